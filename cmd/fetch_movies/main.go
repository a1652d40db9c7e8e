// Command fetch_movies runs one TMDb ingestion pass and exits.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"nexus/internal/config"
	"nexus/internal/database"
	"nexus/internal/modules/ingest"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"
	"nexus/internal/tmdb"
)

func main() {
	pages := flag.Int("pages", ingest.DefaultPages, "pages to fetch per TMDb endpoint")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.TMDB.APIKey == "" {
		logger.Fatal().Msg("TMDB_API_KEY is required")
	}
	if *pages < 1 {
		logger.Fatal().Int("pages", *pages).Msg("--pages must be at least 1")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	client := tmdb.NewClient(tmdb.Config{
		APIKey:            cfg.TMDB.APIKey,
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Timeout:           cfg.TMDB.Timeout,
	})
	service := ingest.NewService(
		client,
		repository.NewMovieRepository(db),
		repository.NewGenreRepository(db),
		repository.NewTrendingRepository(db),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := service.Run(ctx, *pages)
	if err != nil {
		logger.Error().Err(err).Msg("ingestion interrupted")
		os.Exit(1)
	}
	for _, e := range report.Endpoints {
		logger.Info().
			Str("endpoint", e.Endpoint).
			Int("created", e.Created).
			Int("updated", e.Updated).
			Int("failed", e.Failed).
			Int("failed_pages", e.FailedPages).
			Msg("endpoint summary")
	}
	logger.Info().
		Int("created", report.Total.Created).
		Int("updated", report.Total.Updated).
		Int("failed", report.Total.Failed).
		Msg("done")
}
