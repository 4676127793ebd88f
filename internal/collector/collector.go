package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adreach/adsdk/internal/core/config"
	"github.com/adreach/adsdk/internal/infra/storage/postgres"
	"github.com/pressly/goose/v3"
)

// Collector is the telemetry collector service: postgres store, ingest
// server, and a retention pruner.
type Collector struct {
	cfg    config.CollectorConfig
	db     *postgres.DB
	repo   *postgres.TelemetryRepo
	server *Server
	log    *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// New creates a Collector with all dependencies initialized and
// migrations applied.
func New(cfg config.CollectorConfig, log *slog.Logger) (*Collector, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("collector requires a database url")
	}

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db.DB.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}

	repo := postgres.NewTelemetryRepo(db)
	c := &Collector{
		cfg:    cfg,
		db:     db,
		repo:   repo,
		server: NewServer(repo, cfg.Port, log),
		log:    log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	return c, nil
}

// Repo exposes the telemetry repository for CLI commands.
func (c *Collector) Repo() *postgres.TelemetryRepo {
	return c.repo
}

// Start runs the ingest server and the retention pruner until the
// context is cancelled.
func (c *Collector) Start(ctx context.Context) error {
	go c.pruneLoop(ctx)

	c.log.Info("collector listening", "port", c.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.server.Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop shuts the server down gracefully and closes the database.
func (c *Collector) Stop(ctx context.Context) error {
	close(c.stop)
	if err := c.server.Stop(ctx); err != nil {
		c.log.Warn("ingest server shutdown", "error", err)
	}
	<-c.done
	return c.db.Close()
}

// pruneLoop periodically removes telemetry past the retention period.
func (c *Collector) pruneLoop(ctx context.Context) {
	defer close(c.done)

	if c.cfg.RetentionPeriod <= 0 {
		return
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-c.cfg.RetentionPeriod.Std())
			removed, err := c.repo.Purge(ctx, cutoff)
			if err != nil {
				c.log.Warn("retention purge failed", "error", err)
				continue
			}
			if removed > 0 {
				c.log.Info("retention purge complete", "removed", removed)
			}
		}
	}
}
