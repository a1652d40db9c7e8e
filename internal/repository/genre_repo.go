package repository

import (
	"context"

	"nexus/internal/domain"

	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// GenreWithCount is a genre and the number of movies tagged with it.
type GenreWithCount struct {
	ID         int64  `json:"id"`
	ExternalID int64  `json:"tmdb_id"`
	Name       string `json:"name"`
	MovieCount int64  `json:"movie_count"`
}

const genreCountSelect = "genres.id, genres.external_id, genres.name, " +
	"(SELECT COUNT(*) FROM movie_genres WHERE movie_genres.genre_id = genres.id) AS movie_count"

func (r *GenreRepository) ListWithCounts(ctx context.Context) ([]GenreWithCount, error) {
	rows := make([]GenreWithCount, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.Genre{}).
		Select(genreCountSelect).
		Order("genres.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GenreRepository) GetWithCount(ctx context.Context, id int64) (*GenreWithCount, error) {
	var rows []GenreWithCount
	err := r.db.WithContext(ctx).
		Model(&domain.Genre{}).
		Select(genreCountSelect).
		Where("genres.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// GetOrCreate finds a genre by TMDb id or creates it with name.
// The name of an existing genre is left untouched.
func (r *GenreRepository) GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Genre, bool, error) {
	g := domain.Genre{}
	res := r.db.WithContext(ctx).
		Where(domain.Genre{ExternalID: externalID}).
		Attrs(domain.Genre{Name: name}).
		FirstOrCreate(&g)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&g).Error
			return &g, false, err
		}
		return nil, false, res.Error
	}
	return &g, res.RowsAffected > 0, nil
}

// MapByExternalID resolves TMDb genre ids to local ids. Unknown ids are absent.
func (r *GenreRepository) MapByExternalID(ctx context.Context, externalIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}
	var genres []domain.Genre
	if err := r.db.WithContext(ctx).Where("external_id IN ?", externalIDs).Find(&genres).Error; err != nil {
		return nil, err
	}
	for _, g := range genres {
		out[g.ExternalID] = g.ID
	}
	return out, nil
}
