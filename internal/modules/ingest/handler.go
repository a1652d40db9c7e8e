package ingest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"nexus/internal/pkg/logger"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxPages caps the page count accepted by the trigger endpoint.
const MaxPages = 50

type Handler struct {
	service    *Service
	onComplete func(*Report)
}

func NewHandler(service *Service, onComplete func(*Report)) *Handler {
	return &Handler{service: service, onComplete: onComplete}
}

// RegisterRoutes expects a group guarded by JWTAuth and RequireStaff.
func (h *Handler) RegisterRoutes(staff *gin.RouterGroup) {
	staff.POST("/ingest/run/", h.Run)
}

// Run performs a synchronous ingestion and returns its report.
// POST /api/ingest/run/?pages=N
func (h *Handler) Run(c *gin.Context) {
	pages := DefaultPages
	if raw := c.Query("pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPages {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "pages must be between 1 and 50")
			return
		}
		pages = n
	}

	report, err := h.service.Run(c.Request.Context(), pages)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRunning):
			response.Error(c, http.StatusConflict, "INGEST_RUNNING", "An ingestion run is already in progress")
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logger.Warn().Err(err).Msg("manual ingestion interrupted")
		default:
			logger.Error().Err(err).Msg("manual ingestion failed")
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Ingestion failed")
			return
		}
	}

	if h.onComplete != nil && report != nil {
		h.onComplete(report)
	}
	response.Success(c, http.StatusOK, report)
}
