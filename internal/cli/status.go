package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/adreach/adsdk/internal/core/config"
	"github.com/adreach/adsdk/internal/infra/storage/postgres"
	"github.com/spf13/cobra"
)

var statusWindow time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ingested telemetry counts for a recent window",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusWindow, "window", 24*time.Hour, "how far back to count entries")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Collector.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewTelemetryRepo(db)
	counts, err := repo.CountSince(ctx, time.Now().Add(-statusWindow))
	if err != nil {
		slog.Error("Failed to count telemetry", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "KIND\tCOUNT\tWINDOW")
	_, _ = fmt.Fprintf(w, "logs\t%d\t%s\n", counts.Logs, statusWindow)
	_, _ = fmt.Fprintf(w, "errors\t%d\t%s\n", counts.Errors, statusWindow)
	_ = w.Flush()
}
