package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahee-dev/automated-news-scripts/internal/analysis"
	"github.com/mahee-dev/automated-news-scripts/internal/config"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/llm"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/storage"
	"github.com/mahee-dev/automated-news-scripts/internal/infrastructure/telegram"
	"github.com/mahee-dev/automated-news-scripts/internal/logging"
	"github.com/mahee-dev/automated-news-scripts/internal/ports"
	"github.com/mahee-dev/automated-news-scripts/internal/ratelimit"
	"github.com/mahee-dev/automated-news-scripts/internal/usecase"
)

// Analyser wires configuration into the batch enrichment loop.
type Analyser struct {
	pool     *pgxpool.Pool
	enricher *usecase.Enricher
}

// NewAnalyser validates required settings and builds a runnable analyser.
// A missing connection string or API credential is fatal here, before any
// work starts.
func NewAnalyser(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Analyser, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("missing required environment variable DATABASE_URL")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("missing required environment variable GEMINI_API_KEY")
	}

	pool, err := storage.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := storage.NewPostgresRepository(pool)

	processor := analysis.NewProcessor(analysis.ProcessorDeps{
		Client:     llm.NewGeminiClient(cfg.Gemini),
		PromptFile: cfg.Analyser.PromptFile,
		Logger:     logging.Component(baseLogger, "processor"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Store:      repo,
		Processor:  processor,
		Pacer:      ratelimit.NewPacer(cfg.Analyser.RequestsPerMinute),
		Notifier:   notifier,
		Logger:     logging.Component(baseLogger, "enricher"),
		BatchSize:  cfg.Analyser.BatchSize,
		MaxRuntime: time.Duration(cfg.Analyser.MaxRuntime),
	})

	return &Analyser{pool: pool, enricher: enricher}, nil
}

// Run executes one enrichment pass.
func (a *Analyser) Run(ctx context.Context) error {
	return a.enricher.Run(ctx)
}

// Close releases the connection pool.
func (a *Analyser) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
