// Package tmdb is a small client for the TMDb v3 REST API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nexus/internal/metrics"
	"nexus/internal/pkg/logger"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Movie list endpoints ingested by default.
const (
	EndpointPopular     = "movie/popular"
	EndpointTopRated    = "movie/top_rated"
	EndpointUpcoming    = "movie/upcoming"
	EndpointNowPlaying  = "movie/now_playing"
	EndpointTrendingDay = "trending/movie/day"
	EndpointTrendingWk  = "trending/movie/week"

	genresPath = "genre/movie/list"
)

var DefaultEndpoints = []string{
	EndpointPopular,
	EndpointTopRated,
	EndpointUpcoming,
	EndpointNowPlaying,
	EndpointTrendingDay,
	EndpointTrendingWk,
}

const breakerName = "tmdb-api"

type Config struct {
	APIKey            string
	BaseURL           string
	Language          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s returned status %d", e.Path, e.StatusCode)
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	GenreIDs     []int64 `json:"genre_ids"`
}

type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// A rejected request (bad page, bad key) says nothing about availability.
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		cb:      cb,
	}
}

// Genres fetches the full movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out genreList
	if err := c.get(ctx, genresPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// Movies fetches one page of a movie list endpoint such as "movie/popular".
func (c *Client) Movies(ctx context.Context, endpoint string, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var out MoviePage
	if err := c.get(ctx, strings.Trim(endpoint, "/"), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb: rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("language", c.cfg.Language)
	endpoint := c.cfg.BaseURL + "/" + path + "?" + params.Encode()

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.TMDBRequestsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.TMDBRequestsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}
	metrics.TMDBRequestsTotal.WithLabelValues("success").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tmdb: read %s: %w", path, err)
	}
	return body, nil
}
