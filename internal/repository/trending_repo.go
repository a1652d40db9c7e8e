package repository

import (
	"context"
	"time"

	"nexus/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrendingRepository records which movies TMDb listed as trending per day.
type TrendingRepository struct {
	db *gorm.DB
}

func NewTrendingRepository(db *gorm.DB) *TrendingRepository {
	return &TrendingRepository{db: db}
}

// Record stores (movie, period, date); repeated calls are no-ops.
func (r *TrendingRepository) Record(ctx context.Context, movieID int64, period domain.TrendingPeriod, date time.Time) error {
	row := domain.TrendingMovie{
		MovieID:      movieID,
		Period:       period,
		TrendingDate: date,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if IsUniqueViolation(err) {
		return nil
	}
	return err
}

// MovieIDs lists the movies recorded for period on date.
func (r *TrendingRepository) MovieIDs(ctx context.Context, period domain.TrendingPeriod, date time.Time) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.TrendingMovie{}).
		Where("period = ? AND trending_date = ?", period, date).
		Order("movie_id ASC").
		Pluck("movie_id", &ids).Error
	return ids, err
}
