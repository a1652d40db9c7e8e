package movies

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nexus/internal/domain"
	"nexus/internal/middleware"
	"nexus/internal/pkg/cache"
	"nexus/internal/pkg/logger"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Response cache lifetimes.
const (
	GenresTTL      = time.Hour
	PopularTTL     = 30 * time.Minute
	TrendingDayTTL = 5 * time.Minute
)

type Handler struct {
	service *Service
	images  Images
	cache   *cache.Cache
}

// NewHandler wires the catalog endpoints. A nil cache disables response caching.
func NewHandler(service *Service, imageBaseURL string, responseCache *cache.Cache) *Handler {
	return &Handler{
		service: service,
		images:  Images{Base: imageBaseURL},
		cache:   responseCache,
	}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	genres := api.Group("/genres")
	{
		genres.GET("/", middleware.Cache(h.cache, GenresTTL), h.ListGenres)
		genres.GET("/:id/", h.GetGenre)
	}

	movies := api.Group("/movies")
	{
		movies.GET("/", h.ListMovies)
		movies.GET("/popular/", middleware.Cache(h.cache, PopularTTL), h.Popular)
		movies.GET("/top-rated/", h.TopRated)
		movies.GET("/upcoming/", h.Upcoming)
		movies.GET("/now-playing/", h.NowPlaying)
		movies.GET("/recent/", h.Recent)
		movies.GET("/trending/day/", middleware.Cache(h.cache, TrendingDayTTL), h.trending(domain.PeriodDay))
		movies.GET("/trending/week/", h.trending(domain.PeriodWeek))
		movies.GET("/:id/", h.GetMovie)
	}

	api.GET("/search/", h.Search)
}

// GET /api/genres/
func (h *Handler) ListGenres(c *gin.Context) {
	genres, err := h.service.ListGenres(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "list genres")
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// GET /api/genres/:id/
func (h *Handler) GetGenre(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid genre ID")
		return
	}

	genre, err := h.service.GetGenre(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGenreNotFound) {
			response.Error(c, http.StatusNotFound, "GENRE_NOT_FOUND", "Genre not found")
			return
		}
		h.internalError(c, err, "get genre")
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// ListMovies supports search, title, genre, year, min_rating, max_rating,
// ordering, page and page_size.
// GET /api/movies/
func (h *Handler) ListMovies(c *gin.Context) {
	q := ParseListQuery(c.Request.URL.Query())

	movies, page, err := h.service.ListMovies(c.Request.Context(), q)
	if err != nil {
		h.internalError(c, err, "list movies")
		return
	}
	response.Success(c, http.StatusOK, MovieListResponse{
		Results:    h.images.ListItems(movies),
		Pagination: page,
	})
}

// GET /api/movies/:id/
func (h *Handler) GetMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid movie ID")
		return
	}

	movie, err := h.service.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			response.Error(c, http.StatusNotFound, "MOVIE_NOT_FOUND", "Movie not found")
			return
		}
		h.internalError(c, err, "get movie")
		return
	}
	response.Success(c, http.StatusOK, h.images.Detail(movie))
}

// GET /api/movies/popular/
func (h *Handler) Popular(c *gin.Context) {
	h.curated(c, "popular", h.service.Popular)
}

// GET /api/movies/top-rated/
func (h *Handler) TopRated(c *gin.Context) {
	h.curated(c, "top rated", h.service.TopRated)
}

// GET /api/movies/upcoming/
func (h *Handler) Upcoming(c *gin.Context) {
	h.curated(c, "upcoming", h.service.Upcoming)
}

// GET /api/movies/now-playing/
func (h *Handler) NowPlaying(c *gin.Context) {
	h.curated(c, "now playing", h.service.NowPlaying)
}

// GET /api/movies/recent/
func (h *Handler) Recent(c *gin.Context) {
	h.curated(c, "recent", h.service.Recent)
}

// GET /api/movies/trending/{day,week}/
func (h *Handler) trending(period domain.TrendingPeriod) gin.HandlerFunc {
	return func(c *gin.Context) {
		scored, err := h.service.Trending(c.Request.Context(), period)
		if err != nil {
			h.internalError(c, err, "trending "+string(period))
			return
		}
		items := make([]MovieListItem, 0, len(scored))
		for i := range scored {
			item := h.images.ListItem(&scored[i].Movie)
			score := scored[i].Score
			item.TrendingScore = &score
			items = append(items, item)
		}
		response.Success(c, http.StatusOK, items)
	}
}

// GET /api/search/?q=&genre=&min_rating=&year=
func (h *Handler) Search(c *gin.Context) {
	f := ParseSearchQuery(c.Request.URL.Query())

	movies, err := h.service.Search(c.Request.Context(), f)
	if err != nil {
		h.internalError(c, err, "search")
		return
	}
	response.Success(c, http.StatusOK, SearchResponse{
		Count:   len(movies),
		Results: h.images.ListItems(movies),
	})
}

func (h *Handler) curated(c *gin.Context, name string, fetch func(ctx context.Context) ([]domain.Movie, error)) {
	movies, err := fetch(c.Request.Context())
	if err != nil {
		h.internalError(c, err, name)
		return
	}
	response.Success(c, http.StatusOK, h.images.ListItems(movies))
}

func (h *Handler) internalError(c *gin.Context, err error, op string) {
	logger.Error().Err(err).Str("op", op).Msg("catalog query failed")
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
