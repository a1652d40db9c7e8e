// Package ingest mirrors TMDb movie lists into the local catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"nexus/internal/domain"
	"nexus/internal/metrics"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"
	"nexus/internal/tmdb"
	"nexus/internal/trending"
)

const DefaultPages = 5

var ErrAlreadyRunning = errors.New("ingestion already running")

type Source interface {
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	Movies(ctx context.Context, endpoint string, page int) (*tmdb.MoviePage, error)
}

type MovieStore interface {
	Upsert(ctx context.Context, in repository.MovieUpsert) (*domain.Movie, bool, error)
}

type GenreStore interface {
	GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Genre, bool, error)
	MapByExternalID(ctx context.Context, externalIDs []int64) (map[int64]int64, error)
}

type TrendingStore interface {
	Record(ctx context.Context, movieID int64, period domain.TrendingPeriod, date time.Time) error
}

// trendingPeriods maps TMDb trending endpoints to the period they record.
var trendingPeriods = map[string]domain.TrendingPeriod{
	tmdb.EndpointTrendingDay: domain.PeriodDay,
	tmdb.EndpointTrendingWk:  domain.PeriodWeek,
}

type Service struct {
	source    Source
	movies    MovieStore
	genres    GenreStore
	trending  TrendingStore
	endpoints []string
	now       func() time.Time
	running   atomic.Bool
}

func NewService(source Source, movies MovieStore, genres GenreStore, trendingStore TrendingStore) *Service {
	return &Service{
		source:    source,
		movies:    movies,
		genres:    genres,
		trending:  trendingStore,
		endpoints: tmdb.DefaultEndpoints,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Counts tallies movie writes.
type Counts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

func (c *Counts) add(o Counts) {
	c.Created += o.Created
	c.Updated += o.Updated
	c.Failed += o.Failed
}

type EndpointReport struct {
	Endpoint    string `json:"endpoint"`
	Pages       int    `json:"pages"`
	FailedPages int    `json:"failed_pages"`
	Counts
}

type Report struct {
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	GenresCreated int              `json:"genres_created"`
	GenresFailed  bool             `json:"genres_failed"`
	Endpoints     []EndpointReport `json:"endpoints"`
	Total         Counts           `json:"total"`
}

// Run syncs genres and then fetches pages 1..pages of every endpoint.
// Failed pages and movies are logged and skipped; only cancellation of ctx
// ends the run early, in which case the partial report is returned with
// ctx's error.
func (s *Service) Run(ctx context.Context, pages int) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if pages <= 0 {
		pages = DefaultPages
	}

	report := &Report{StartedAt: s.now()}
	log := logger.With().Str("component", "ingest").Logger()
	log.Info().Int("pages", pages).Strs("endpoints", s.endpoints).Msg("ingestion started")

	created, err := s.syncGenres(ctx)
	report.GenresCreated = created
	if err != nil {
		report.GenresFailed = true
		log.Error().Err(err).Msg("genre sync failed, continuing with existing genres")
	}

	for _, endpoint := range s.endpoints {
		if err := ctx.Err(); err != nil {
			return s.finish(report), err
		}
		er := s.runEndpoint(ctx, endpoint, pages)
		report.Endpoints = append(report.Endpoints, er)
		report.Total.add(er.Counts)
	}

	s.finish(report)
	metrics.IngestLastRun.Set(float64(report.FinishedAt.Unix()))
	log.Info().
		Int("created", report.Total.Created).
		Int("updated", report.Total.Updated).
		Int("failed", report.Total.Failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("ingestion finished")
	return report, ctx.Err()
}

func (s *Service) finish(r *Report) *Report {
	r.FinishedAt = s.now()
	return r
}

func (s *Service) syncGenres(ctx context.Context) (int, error) {
	genres, err := s.source.Genres(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch genres: %w", err)
	}
	created := 0
	for _, g := range genres {
		_, isNew, err := s.genres.GetOrCreate(ctx, g.ID, g.Name)
		if err != nil {
			logger.Warn().Err(err).Int64("tmdb_id", g.ID).Str("name", g.Name).Msg("genre upsert failed")
			continue
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func (s *Service) runEndpoint(ctx context.Context, endpoint string, pages int) EndpointReport {
	er := EndpointReport{Endpoint: endpoint}
	period, isTrending := trendingPeriods[endpoint]
	log := logger.With().Str("component", "ingest").Str("endpoint", endpoint).Logger()

	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			break
		}

		resp, err := s.source.Movies(ctx, endpoint, page)
		if err != nil {
			er.FailedPages++
			metrics.IngestPagesTotal.WithLabelValues(endpoint, "failed").Inc()
			log.Error().Err(err).Int("page", page).Msg("page fetch failed, skipping")
			continue
		}
		er.Pages++
		metrics.IngestPagesTotal.WithLabelValues(endpoint, "ok").Inc()

		counts := s.storePage(ctx, resp.Results, period, isTrending)
		er.add(counts)
		log.Debug().Int("page", page).Int("created", counts.Created).Int("updated", counts.Updated).Msg("page stored")

		if resp.TotalPages > 0 && page >= resp.TotalPages {
			break
		}
	}

	log.Info().
		Int("pages", er.Pages).
		Int("failed_pages", er.FailedPages).
		Int("created", er.Created).
		Int("updated", er.Updated).
		Int("failed", er.Failed).
		Msg("endpoint done")
	return er
}

func (s *Service) storePage(ctx context.Context, results []tmdb.Movie, period domain.TrendingPeriod, isTrending bool) Counts {
	var c Counts

	genreMap, err := s.genres.MapByExternalID(ctx, collectGenreIDs(results))
	if err != nil {
		logger.Warn().Err(err).Msg("genre lookup failed, storing movies without genres")
		genreMap = map[int64]int64{}
	}
	today := trending.Today(s.now())

	for _, m := range results {
		saved, isNew, err := s.movies.Upsert(ctx, toUpsert(m, genreMap))
		if err != nil {
			c.Failed++
			metrics.IngestMoviesTotal.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Int64("tmdb_id", m.ID).Str("title", m.Title).Msg("movie upsert failed")
			continue
		}
		if isNew {
			c.Created++
			metrics.IngestMoviesTotal.WithLabelValues("created").Inc()
		} else {
			c.Updated++
			metrics.IngestMoviesTotal.WithLabelValues("updated").Inc()
		}

		if isTrending {
			if err := s.trending.Record(ctx, saved.ID, period, today); err != nil {
				logger.Warn().Err(err).Int64("movie_id", saved.ID).Str("period", string(period)).Msg("trending record failed")
			}
		}
	}
	return c
}

func collectGenreIDs(results []tmdb.Movie) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, m := range results {
		for _, id := range m.GenreIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// toUpsert converts a TMDb record. Unknown genre ids are dropped and an
// empty or malformed release date becomes NULL.
func toUpsert(m tmdb.Movie, genreMap map[int64]int64) repository.MovieUpsert {
	genreIDs := make([]int64, 0, len(m.GenreIDs))
	for _, ext := range m.GenreIDs {
		if local, ok := genreMap[ext]; ok {
			genreIDs = append(genreIDs, local)
		}
	}

	var release *time.Time
	if raw := strings.TrimSpace(m.ReleaseDate); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			release = &d
		}
	}

	return repository.MovieUpsert{
		ExternalID:   m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		ReleaseDate:  release,
		PosterPath:   emptyToNil(m.PosterPath),
		BackdropPath: emptyToNil(m.BackdropPath),
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		GenreIDs:     genreIDs,
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
