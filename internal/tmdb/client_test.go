package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/3/",
		Language: "en-US",
		Timeout:  2 * time.Second,
	})
}

func TestClient_Genres(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/genre/movie/list", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":18,"name":"Drama"}]}`))
	})

	genres, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}}, genres)
}

func TestClient_Movies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/trending/movie/day", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{
			"page": 2, "total_pages": 7, "total_results": 140,
			"results": [
				{"id": 550, "title": "Fight Club", "overview": "x", "release_date": "1999-10-15",
				 "poster_path": "/p.jpg", "backdrop_path": null,
				 "vote_average": 8.4, "vote_count": 27000, "genre_ids": [18, 53]},
				{"id": 1, "title": "No Date", "release_date": ""}
			]}`))
	})

	page, err := c.Movies(context.Background(), EndpointTrendingDay, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 7, page.TotalPages)
	require.Len(t, page.Results, 2)

	fc := page.Results[0]
	assert.Equal(t, int64(550), fc.ID)
	assert.Equal(t, "1999-10-15", fc.ReleaseDate)
	require.NotNil(t, fc.PosterPath)
	assert.Equal(t, "/p.jpg", *fc.PosterPath)
	assert.Nil(t, fc.BackdropPath)
	assert.Equal(t, []int64{18, 53}, fc.GenreIDs)
	assert.Equal(t, "", page.Results[1].ReleaseDate)
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.Genres(context.Background())
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": [`))
		})
		_, err := c.Movies(context.Background(), EndpointPopular, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Movies(ctx, EndpointPopular, 1)
		require.Error(t, err)
	})
}

func TestClient_BreakerOpensOnRepeatedServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Movies(context.Background(), EndpointPopular, i+1)
		var se *StatusError
		require.ErrorAs(t, err, &se)
	}

	_, err := c.Movies(context.Background(), EndpointPopular, 6)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(5), calls.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 8; i++ {
		_, err := c.Movies(context.Background(), EndpointPopular, 1)
		require.Error(t, err)
	}
	assert.Equal(t, int32(8), calls.Load())
}
