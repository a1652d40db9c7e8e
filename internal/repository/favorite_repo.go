package repository

import (
	"context"
	"errors"

	"nexus/internal/domain"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Get(ctx context.Context, userID, movieID int64) (*domain.Favorite, error) {
	var f domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetOrCreate returns the (user, movie) favorite, creating it when absent.
// A concurrent insert that loses the race on the unique index is reported
// as an existing row rather than an error.
func (r *FavoriteRepository) GetOrCreate(ctx context.Context, userID, movieID int64) (*domain.Favorite, bool, error) {
	existing, err := r.Get(ctx, userID, movieID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	f := &domain.Favorite{UserID: userID, MovieID: movieID}
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if IsUniqueViolation(err) {
			existing, getErr := r.Get(ctx, userID, movieID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return f, true, nil
}

// Remove deletes the favorite and reports whether a row existed.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, movieID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser returns the user's favorites, newest first, with movie and genres.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	favorites := make([]domain.Favorite, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Movie").
		Preload("Movie.Genres", orderGenres).
		Order("added_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *FavoriteRepository) Count(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
