package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"nexus/internal/config"
	"nexus/internal/database"
	"nexus/internal/pkg/logger"
	"nexus/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	app, err := server.New(cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("build application")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
