package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"songbook/internal/app"
	"songbook/pkg/config"
	"songbook/pkg/logger"
	"songbook/pkg/shutdown"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	_ = godotenv.Load(".env")

	flags := config.ParseFlags()
	cfg, err := config.Load(flags.Config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	flags.Apply(cfg)

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.New(cfg, version)
	if err != nil {
		logger.Error("startup_failed", "error", err)
		log.Fatalf("startup failed: %v", err)
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_failed", "error", err)
		log.Fatalf("server failed: %v", err)
	}
	logger.Info("server_stopped")
}
