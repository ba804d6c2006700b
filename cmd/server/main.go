package main

import (
	"log/slog"
	"os"

	"marketplace-portal/internal/app"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}))

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
