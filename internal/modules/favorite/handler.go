package favorite

import (
	"errors"
	"net/http"
	"strconv"

	"nexus/internal/middleware"
	"nexus/internal/modules/movies"
	"nexus/internal/pkg/logger"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler serves the caller's favorites.
type Handler struct {
	service *Service
	images  movies.Images
}

func NewHandler(service *Service, imageBaseURL string) *Handler {
	return &Handler{service: service, images: movies.Images{Base: imageBaseURL}}
}

// RegisterRoutes expects a group that already runs JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	favorites := protected.Group("/favorites")
	{
		favorites.GET("/", h.GetFavorites)
		favorites.POST("/add/:movie_id/", h.AddFavorite)
		favorites.POST("/remove/:movie_id/", h.RemoveFavorite)
	}
}

// GetFavorites lists the caller's favorites, newest first.
// GET /api/favorites/
func (h *Handler) GetFavorites(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	favorites, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("list favorites failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get favorites")
		return
	}
	response.Success(c, http.StatusOK, ToFavoriteListResponse(h.images, favorites))
}

// AddFavorite answers 201 for a new favorite and 200 when it already existed.
// POST /api/favorites/add/:movie_id/
func (h *Handler) AddFavorite(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	movieID, ok := parseMovieID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid movie ID")
		return
	}

	created, err := h.service.Add(c.Request.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			response.Error(c, http.StatusNotFound, "MOVIE_NOT_FOUND", "Movie not found")
			return
		}
		logger.Error().Err(err).Int64("user_id", userID).Int64("movie_id", movieID).Msg("add favorite failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add favorite")
		return
	}

	if created {
		response.Message(c, http.StatusCreated, "Movie added to favorites")
		return
	}
	response.Message(c, http.StatusOK, "Movie already in favorites")
}

// POST /api/favorites/remove/:movie_id/
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	movieID, ok := parseMovieID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid movie ID")
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, movieID); err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			response.Error(c, http.StatusNotFound, "FAVORITE_NOT_FOUND", "Movie not in favorites")
			return
		}
		logger.Error().Err(err).Int64("user_id", userID).Int64("movie_id", movieID).Msg("remove favorite failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove favorite")
		return
	}
	response.Message(c, http.StatusOK, "Movie removed from favorites")
}

func parseMovieID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
	return id, err == nil && id > 0
}
