package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahee-dev/automated-news-scripts/internal/app"
	"github.com/mahee-dev/automated-news-scripts/internal/config"
	"github.com/mahee-dev/automated-news-scripts/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	fetcher, err := app.NewFetcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("fetcher startup failed", "error", err)
		os.Exit(1)
	}
	defer fetcher.Close()

	if err := fetcher.Run(ctx); err != nil {
		logger.Error("fetcher stopped", "error", err)
		os.Exit(1)
	}
}
