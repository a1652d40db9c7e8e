package favorite

import (
	"context"
	"errors"

	"nexus/internal/domain"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrFavoriteNotFound = errors.New("movie not in favorites")
)

type FavoriteRepositoryInterface interface {
	GetOrCreate(ctx context.Context, userID, movieID int64) (*domain.Favorite, bool, error)
	Remove(ctx context.Context, userID, movieID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Favorite, error)
}

type MovieExistence interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	favorites FavoriteRepositoryInterface
	movies    MovieExistence
}

func NewService(favorites FavoriteRepositoryInterface, movies MovieExistence) *Service {
	return &Service{favorites: favorites, movies: movies}
}

// Add is idempotent; created is false when the movie was already a favorite.
func (s *Service) Add(ctx context.Context, userID, movieID int64) (created bool, err error) {
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrMovieNotFound
	}
	_, created, err = s.favorites.GetOrCreate(ctx, userID, movieID)
	return created, err
}

func (s *Service) Remove(ctx context.Context, userID, movieID int64) error {
	removed, err := s.favorites.Remove(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	return s.favorites.ListByUser(ctx, userID)
}
