package movies

import (
	"time"

	"nexus/internal/domain"
	"nexus/internal/repository"
)

const dateLayout = "2006-01-02"

// GenreBrief is a genre nested inside a movie.
type GenreBrief struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdb_id"`
	Name   string `json:"name"`
}

type GenreResponse = repository.GenreWithCount

// MovieListItem is the compact shape used by every list endpoint.
type MovieListItem struct {
	ID            int64    `json:"id"`
	TMDBID        int64    `json:"tmdb_id"`
	Title         string   `json:"title"`
	ReleaseDate   *string  `json:"release_date"`
	PosterURL     *string  `json:"poster_url"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int64    `json:"vote_count"`
	Genres        []string `json:"genres"`
	TrendingScore *float64 `json:"trending_score,omitempty"`
}

type MovieDetail struct {
	ID           int64        `json:"id"`
	TMDBID       int64        `json:"tmdb_id"`
	Title        string       `json:"title"`
	Overview     string       `json:"overview"`
	ReleaseDate  *string      `json:"release_date"`
	PosterPath   *string      `json:"poster_path"`
	BackdropPath *string      `json:"backdrop_path"`
	PosterURL    *string      `json:"poster_url"`
	BackdropURL  *string      `json:"backdrop_url"`
	VoteAverage  float64      `json:"vote_average"`
	VoteCount    int64        `json:"vote_count"`
	Genres       []GenreBrief `json:"genres"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type MovieListResponse struct {
	Results    []MovieListItem `json:"results"`
	Pagination Pagination      `json:"pagination"`
}

type SearchResponse struct {
	Count   int             `json:"count"`
	Results []MovieListItem `json:"results"`
}

// Images builds absolute TMDb image URLs from relative paths.
type Images struct {
	Base string
}

func (i Images) url(size string, path *string) *string {
	u := domain.ImageURL(i.Base, size, path)
	if u == "" {
		return nil
	}
	return &u
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func (i Images) ListItem(m *domain.Movie) MovieListItem {
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}
	return MovieListItem{
		ID:          m.ID,
		TMDBID:      m.ExternalID,
		Title:       m.Title,
		ReleaseDate: formatDate(m.ReleaseDate),
		PosterURL:   i.url(domain.PosterSize, m.PosterPath),
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		Genres:      genres,
	}
}

func (i Images) ListItems(movies []domain.Movie) []MovieListItem {
	out := make([]MovieListItem, 0, len(movies))
	for k := range movies {
		out = append(out, i.ListItem(&movies[k]))
	}
	return out
}

func (i Images) Detail(m *domain.Movie) MovieDetail {
	genres := make([]GenreBrief, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, GenreBrief{ID: g.ID, TMDBID: g.ExternalID, Name: g.Name})
	}
	return MovieDetail{
		ID:           m.ID,
		TMDBID:       m.ExternalID,
		Title:        m.Title,
		Overview:     m.Overview,
		ReleaseDate:  formatDate(m.ReleaseDate),
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		PosterURL:    i.url(domain.PosterSize, m.PosterPath),
		BackdropURL:  i.url(domain.BackdropSize, m.BackdropPath),
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		Genres:       genres,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
