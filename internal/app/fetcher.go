package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahee-dev/automated-news-scripts/internal/config"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/feed"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/scheduler"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/storage"
	"github.com/mahee-dev/automated-news-scripts/internal/logging"
	"github.com/mahee-dev/automated-news-scripts/internal/usecase"
)

// Fetcher wires configuration into the RSS polling pass.
type Fetcher struct {
	pool     *pgxpool.Pool
	pipeline *usecase.FetchPipeline
	interval time.Duration
}

// NewFetcher validates required settings and builds a runnable fetcher.
func NewFetcher(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Fetcher, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("missing required environment variable DATABASE_URL")
	}

	pool, err := storage.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pipeline := usecase.NewFetchPipeline(usecase.FetchPipelineDeps{
		Store:        storage.NewPostgresRepository(pool),
		Reader:       feed.NewReader(nil),
		Logger:       logging.Component(baseLogger, "fetcher"),
		PerFeedLimit: cfg.Fetcher.PerFeedLimit,
	})

	return &Fetcher{pool: pool, pipeline: pipeline, interval: time.Duration(cfg.Fetcher.Interval)}, nil
}

// Run performs a single polling pass, or keeps polling on the configured
// interval until the context ends.
func (f *Fetcher) Run(ctx context.Context) error {
	if f.interval <= 0 {
		return f.pipeline.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(f.interval)
	if err := driver.Start(ctx, func(time.Time) {
		_ = f.pipeline.Run(ctx)
	}); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return driver.Stop(context.Background())
}

// Close releases the connection pool.
func (f *Fetcher) Close() {
	if f.pool != nil {
		f.pool.Close()
	}
}
