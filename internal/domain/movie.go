package domain

import (
	"time"
)

// Genre is a TMDb movie genre. ExternalID is the TMDb genre id.
type Genre struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	ExternalID int64  `json:"tmdb_id" gorm:"column:external_id;uniqueIndex;not null"`
	Name       string `json:"name" gorm:"size:100;not null"`
}

func (Genre) TableName() string {
	return "genres"
}

// Movie is written only by ingestion and keyed by ExternalID (the TMDb id).
// ReleaseDate is stored as a UTC midnight timestamp or NULL when unknown.
type Movie struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	ExternalID   int64      `json:"tmdb_id" gorm:"column:external_id;uniqueIndex;not null"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Overview     string     `json:"overview" gorm:"type:text"`
	ReleaseDate  *time.Time `json:"release_date" gorm:"index"`
	PosterPath   *string    `json:"poster_path" gorm:"size:255"`
	BackdropPath *string    `json:"backdrop_path" gorm:"size:255"`
	VoteAverage  float64    `json:"vote_average" gorm:"type:double precision;not null;default:0;index"`
	VoteCount    int64      `json:"vote_count" gorm:"not null;default:0;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Genres []Genre `json:"genres,omitempty" gorm:"many2many:movie_genres;"`
}

func (Movie) TableName() string {
	return "movies"
}

// ReleaseYear returns 0 when the release date is unknown.
func (m *Movie) ReleaseYear() int {
	if m.ReleaseDate == nil {
		return 0
	}
	return m.ReleaseDate.Year()
}

// ImageURL joins a TMDb image base, a size segment and a path.
// Empty paths produce an empty URL.
func ImageURL(base, size string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return base + "/" + size + *path
}

const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

type TrendingPeriod string

const (
	PeriodDay  TrendingPeriod = "day"
	PeriodWeek TrendingPeriod = "week"
)

// TrendingMovie records that TMDb listed a movie as trending on a given date.
type TrendingMovie struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	MovieID      int64          `json:"movie_id" gorm:"not null;uniqueIndex:idx_trending_movie_period_date"`
	Period       TrendingPeriod `json:"period" gorm:"size:10;not null;uniqueIndex:idx_trending_movie_period_date"`
	TrendingDate time.Time      `json:"trending_date" gorm:"not null;uniqueIndex:idx_trending_movie_period_date"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`

	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (TrendingMovie) TableName() string {
	return "trending_movies"
}
