// Command seed fills an empty database with a small demo catalog and a demo
// account so the API can be explored without a TMDb key.
package main

import (
	"context"
	"time"

	"nexus/internal/config"
	"nexus/internal/database"
	"nexus/internal/domain"
	"nexus/internal/modules/auth"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type seedMovie struct {
	externalID int64
	title      string
	overview   string
	daysAgo    int // relative to today; negative means upcoming
	avg        float64
	votes      int64
	genres     []int64
	trending   []domain.TrendingPeriod
}

var seedGenres = []struct {
	id   int64
	name string
}{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{18, "Drama"},
	{27, "Horror"},
	{878, "Science Fiction"},
	{53, "Thriller"},
}

var seedMovies = []seedMovie{
	{900001, "Signal Lost", "A radio engineer hears tomorrow's news.", 5, 8.2, 1200, []int64{878, 53}, []domain.TrendingPeriod{domain.PeriodDay, domain.PeriodWeek}},
	{900002, "The Long Quiet", "Two sisters inherit a lighthouse.", 40, 7.4, 640, []int64{18}, []domain.TrendingPeriod{domain.PeriodWeek}},
	{900003, "Paper Giants", "An origami army comes to life.", 120, 6.9, 310, []int64{16, 12}, nil},
	{900004, "Ninth Floor", "The elevator never stops at nine.", 2, 5.8, 85, []int64{27, 53}, []domain.TrendingPeriod{domain.PeriodDay}},
	{900005, "Old Harbor", "A fishing town on its last season.", 730, 9.0, 20, []int64{18}, nil},
	{900006, "Fast Lines", "Couriers race across a flooded city.", 200, 6.4, 2400, []int64{28, 12}, nil},
	{900007, "Laugh Track", "A sitcom cast that cannot leave the set.", 15, 7.1, 150, []int64{35}, nil},
	{900008, "Orbit Road", "The first highway to the moon opens.", -30, 0, 0, []int64{878, 12}, nil},
	{900009, "Winter Ledger", "An accountant audits a ghost.", -10, 0, 0, []int64{18, 27}, nil},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}

	ctx := context.Background()
	genres := repository.NewGenreRepository(db)
	movies := repository.NewMovieRepository(db)
	trending := repository.NewTrendingRepository(db)
	users := repository.NewUserRepository(db)

	for _, g := range seedGenres {
		if _, _, err := genres.GetOrCreate(ctx, g.id, g.name); err != nil {
			logger.Fatal().Err(err).Str("genre", g.name).Msg("seed genre failed")
		}
	}
	genreMap, err := genres.MapByExternalID(ctx, externalGenreIDs())
	if err != nil {
		logger.Fatal().Err(err).Msg("map genres failed")
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, sm := range seedMovies {
		release := today.AddDate(0, 0, -sm.daysAgo)
		local := make([]int64, 0, len(sm.genres))
		for _, id := range sm.genres {
			local = append(local, genreMap[id])
		}
		m, created, err := movies.Upsert(ctx, repository.MovieUpsert{
			ExternalID:  sm.externalID,
			Title:       sm.title,
			Overview:    sm.overview,
			ReleaseDate: &release,
			VoteAverage: sm.avg,
			VoteCount:   sm.votes,
			GenreIDs:    local,
		})
		if err != nil {
			logger.Fatal().Err(err).Str("title", sm.title).Msg("seed movie failed")
		}
		for _, p := range sm.trending {
			if err := trending.Record(ctx, m.ID, p, today); err != nil {
				logger.Fatal().Err(err).Str("title", sm.title).Msg("seed trending failed")
			}
		}
		logger.Info().Str("title", m.Title).Bool("created", created).Msg("movie seeded")
	}

	exists, err := users.ExistsByUsername(ctx, "demo")
	if err != nil {
		logger.Fatal().Err(err).Msg("check demo user")
	}
	if !exists {
		hash, err := auth.HashPassword("demo-password", bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("hash password")
		}
		demo := &domain.User{Username: "demo", Email: "demo@nexus.local", PasswordHash: hash, FirstName: "Demo"}
		if err := users.Create(ctx, demo); err != nil {
			logger.Fatal().Err(err).Msg("create demo user")
		}
		logger.Info().Msg("demo user created: demo / demo-password")
	}

	logger.Info().Int("genres", len(seedGenres)).Int("movies", len(seedMovies)).Msg("seed completed")
}

func externalGenreIDs() []int64 {
	ids := make([]int64, 0, len(seedGenres))
	for _, g := range seedGenres {
		ids = append(ids, g.id)
	}
	return ids
}
