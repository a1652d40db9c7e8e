package server

import (
	"context"
	"net/http"
	"time"

	"nexus/internal/middleware"
	"nexus/internal/modules/auth"
	"nexus/internal/modules/favorite"
	"nexus/internal/modules/ingest"
	"nexus/internal/modules/movies"
	"nexus/internal/pkg/jwt"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	Movies   *movies.Handler
	Favorite *favorite.Handler
	Ingest   *ingest.Handler
}

// RouterDeps carries the middleware dependencies.
type RouterDeps struct {
	JWT         *jwt.Service
	Tokens      middleware.TokenChecker
	Users       middleware.UserLookup
	CORSOrigins []string
	Ping        func(ctx context.Context) error
}

func NewRouter(h Handlers, deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		middleware.CORS(deps.CORSOrigins),
	)

	r.GET("/health", health(deps.Ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		h.Auth.RegisterPublicRoutes(api)
		h.Movies.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(deps.JWT, deps.Tokens))
	{
		h.Auth.RegisterProtectedRoutes(protected)
		h.Favorite.RegisterRoutes(protected)
	}

	staff := protected.Group("")
	staff.Use(middleware.RequireStaff(deps.Users))
	{
		h.Ingest.RegisterRoutes(staff)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})

	return r
}

// GET /health
func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok"}
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				response.Success(c, http.StatusServiceUnavailable, status)
				return
			}
		}
		response.Success(c, http.StatusOK, status)
	}
}
