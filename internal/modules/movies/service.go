package movies

import (
	"context"
	"errors"
	"time"

	"nexus/internal/domain"
	"nexus/internal/repository"
	"nexus/internal/trending"

	"gorm.io/gorm"
)

const (
	CuratedLimit     = 20
	PopularMinVotes  = 100
	PopularMinRating = 6.0
	TopRatedMinVotes = 50
)

type MovieRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	Popular(ctx context.Context, minVotes int64, minRating float64, limit int) ([]domain.Movie, error)
	TopRated(ctx context.Context, minVotes int64, limit int) ([]domain.Movie, error)
	Upcoming(ctx context.Context, today time.Time, limit int) ([]domain.Movie, error)
	NowPlaying(ctx context.Context, today time.Time, limit int) ([]domain.Movie, error)
	Recent(ctx context.Context, limit int) ([]domain.Movie, error)
	Trending(ctx context.Context, v trending.Variant, now time.Time, limit int) ([]domain.Movie, error)
	Search(ctx context.Context, f repository.MovieFilter, limit int) ([]domain.Movie, error)
	List(ctx context.Context, f repository.MovieFilter, ordering []repository.OrderField, limit, offset int) ([]domain.Movie, int64, error)
}

type GenreRepositoryInterface interface {
	ListWithCounts(ctx context.Context) ([]repository.GenreWithCount, error)
	GetWithCount(ctx context.Context, id int64) (*repository.GenreWithCount, error)
}

type Service struct {
	movies MovieRepositoryInterface
	genres GenreRepositoryInterface
	now    func() time.Time
}

func NewService(movies MovieRepositoryInterface, genres GenreRepositoryInterface) *Service {
	return &Service{
		movies: movies,
		genres: genres,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ScoredMovie is a trending entry with the score it was ranked by.
type ScoredMovie struct {
	Movie domain.Movie
	Score float64
}

func (s *Service) ListGenres(ctx context.Context) ([]repository.GenreWithCount, error) {
	return s.genres.ListWithCounts(ctx)
}

func (s *Service) GetGenre(ctx context.Context, id int64) (*repository.GenreWithCount, error) {
	g, err := s.genres.GetWithCount(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGenreNotFound
	}
	return g, err
}

func (s *Service) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

func (s *Service) ListMovies(ctx context.Context, q ListQuery) ([]domain.Movie, Pagination, error) {
	movies, total, err := s.movies.List(ctx, q.Filter, q.Ordering, q.PageSize, q.Offset())
	if err != nil {
		return nil, Pagination{}, err
	}
	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return movies, Pagination{
		Page:       q.Page,
		Limit:      q.PageSize,
		Total:      total,
		TotalPages: pages,
	}, nil
}

func (s *Service) Popular(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.Popular(ctx, PopularMinVotes, PopularMinRating, CuratedLimit)
}

func (s *Service) TopRated(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.TopRated(ctx, TopRatedMinVotes, CuratedLimit)
}

func (s *Service) Upcoming(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.Upcoming(ctx, trending.Today(s.now()), CuratedLimit)
}

func (s *Service) NowPlaying(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.NowPlaying(ctx, trending.Today(s.now()), CuratedLimit)
}

func (s *Service) Recent(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.Recent(ctx, CuratedLimit)
}

// Trending ranks in the database and reports each movie's score as the
// in-process formula computes it for the same instant.
func (s *Service) Trending(ctx context.Context, period domain.TrendingPeriod) ([]ScoredMovie, error) {
	v, ok := trending.ForPeriod(period)
	if !ok {
		return nil, ErrUnknownPeriod
	}
	now := s.now()
	movies, err := s.movies.Trending(ctx, v, now, trending.DefaultLimit)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMovie, 0, len(movies))
	for i := range movies {
		out = append(out, ScoredMovie{Movie: movies[i], Score: v.Score(&movies[i], now)})
	}
	return out, nil
}

func (s *Service) Search(ctx context.Context, f repository.MovieFilter) ([]domain.Movie, error) {
	return s.movies.Search(ctx, f, repository.SearchLimit)
}
