// Package server assembles the HTTP API and its background services.
package server

import (
	"context"
	"net/http"
	"time"

	"nexus/internal/config"
	"nexus/internal/modules/auth"
	"nexus/internal/modules/favorite"
	"nexus/internal/modules/ingest"
	"nexus/internal/modules/movies"
	"nexus/internal/notification"
	"nexus/internal/pkg/cache"
	"nexus/internal/pkg/jwt"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"
	"nexus/internal/tmdb"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	router     *gin.Engine
	cache      *cache.Cache
	dispatcher *notification.Dispatcher
	ingest     *ingest.Service
	scheduler  *ingest.Scheduler
}

// New wires repositories, services and handlers on top of an open database.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{cfg: cfg}

	if cfg.CacheEnabled {
		store, err := cache.New(cache.DefaultConfig())
		if err != nil {
			return nil, err
		}
		app.cache = store
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	trendingRepo := repository.NewTrendingRepository(db)

	app.dispatcher = notification.NewDispatcher(notification.NewMailer(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		UseTLS:   cfg.SMTP.UseTLS,
	}))

	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	tmdbClient := tmdb.NewClient(tmdb.Config{
		APIKey:            cfg.TMDB.APIKey,
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Timeout:           cfg.TMDB.Timeout,
	})
	app.ingest = ingest.NewService(tmdbClient, movieRepo, genreRepo, trendingRepo)

	if cfg.IngestSchedule != "" {
		if cfg.TMDB.APIKey == "" {
			logger.Warn().Msg("INGEST_SCHEDULE is set but TMDB_API_KEY is empty, scheduled ingestion disabled")
		} else {
			s, err := ingest.NewScheduler(app.ingest, cfg.IngestSchedule, cfg.TMDB.Pages, ingest.WithOnComplete(app.invalidateCache))
			if err != nil {
				return nil, err
			}
			app.scheduler = s
		}
	}

	handlers := Handlers{
		Auth:     auth.NewHandler(auth.NewService(userRepo, tokenRepo, jwtService, app.dispatcher)),
		Movies:   movies.NewHandler(movies.NewService(movieRepo, genreRepo), cfg.TMDB.ImageBaseURL, app.cache),
		Favorite: favorite.NewHandler(favorite.NewService(favoriteRepo, movieRepo), cfg.TMDB.ImageBaseURL),
		Ingest:   ingest.NewHandler(app.ingest, app.invalidateCache),
	}

	app.router = NewRouter(handlers, RouterDeps{
		JWT:         jwtService,
		Tokens:      tokenRepo,
		Users:       userRepo,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	return app, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Serve runs the HTTP server, the mail dispatcher and, when configured, the
// ingest scheduler until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	root := NewSupervisor("nexus", a.cfg.ShutdownTimeout)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	root.Add(NewHTTPService(srv, a.cfg.ShutdownTimeout))
	root.Add(a.dispatcher)
	if a.scheduler != nil {
		root.Add(NewSchedulerService("ingest-scheduler", a.scheduler))
	}

	logger.Info().Str("addr", a.cfg.HTTPAddr).Bool("scheduled_ingest", a.scheduler != nil).Msg("starting nexus")
	return root.Serve(ctx)
}

func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// invalidateCache drops cached catalog responses once new data is stored.
func (a *App) invalidateCache(r *ingest.Report) {
	if a.cache == nil {
		return
	}
	a.cache.Clear()
	logger.Info().
		Int("created", r.Total.Created).
		Int("updated", r.Total.Updated).
		Msg("response cache cleared after ingestion")
}
