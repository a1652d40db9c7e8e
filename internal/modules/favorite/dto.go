package favorite

import (
	"time"

	"nexus/internal/domain"
	"nexus/internal/modules/movies"
)

// FavoriteResponse is one bookmarked movie.
type FavoriteResponse struct {
	ID      int64                 `json:"id"`
	MovieID int64                 `json:"movie_id"`
	Movie   *movies.MovieListItem `json:"movie,omitempty"`
	AddedAt time.Time             `json:"added_at"`
}

type FavoriteListResponse struct {
	Count     int                `json:"count"`
	Favorites []FavoriteResponse `json:"favorites"`
}

func ToFavoriteListResponse(images movies.Images, favorites []domain.Favorite) FavoriteListResponse {
	out := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		resp := FavoriteResponse{
			ID:      f.ID,
			MovieID: f.MovieID,
			AddedAt: f.AddedAt,
		}
		if f.Movie != nil {
			item := images.ListItem(f.Movie)
			resp.Movie = &item
		}
		out = append(out, resp)
	}
	return FavoriteListResponse{Count: len(out), Favorites: out}
}
