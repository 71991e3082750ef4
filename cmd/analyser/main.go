package main

import (
	"context"
	"os"

	"github.com/mahee-dev/automated-news-scripts/internal/app"
	"github.com/mahee-dev/automated-news-scripts/internal/config"
	"github.com/mahee-dev/automated-news-scripts/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	analyser, err := app.NewAnalyser(ctx, cfg, logger)
	if err != nil {
		logger.Error("analyser startup failed", "error", err)
		os.Exit(1)
	}
	defer analyser.Close()

	if err := analyser.Run(ctx); err != nil {
		logger.Error("analyser stopped", "error", err)
		os.Exit(1)
	}
}
