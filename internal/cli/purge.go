package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/adreach/adsdk/internal/core/config"
	"github.com/adreach/adsdk/internal/infra/storage/postgres"
	"github.com/spf13/cobra"
)

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete telemetry entries older than a cutoff",
	Run:   runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "delete entries received before now minus this duration")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) {
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
	removed, err := repo.Purge(ctx, time.Now().Add(-purgeOlderThan))
	if err != nil {
		slog.Error("Failed to purge telemetry", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Removed %d telemetry entries older than %s\n", removed, purgeOlderThan)
}
