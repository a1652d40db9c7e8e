package ingest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nexus/internal/tmdb"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, f *fixture, onComplete func(*Report)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(f.service, onComplete).RegisterRoutes(router.Group("/api"))
	return router
}

func post(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestHandler_Run(t *testing.T) {
	f := newFixture(t, tmdb.EndpointPopular)
	f.source.pages[tmdb.EndpointPopular] = []tmdb.MoviePage{matrixPage()}

	var completed *Report
	router := newRouter(t, f, func(r *Report) { completed = r })

	w := post(router, "/api/ingest/run/?pages=2")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool   `json:"success"`
		Data    Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Data.Total.Created)
	require.Len(t, env.Data.Endpoints, 1)
	assert.Equal(t, tmdb.EndpointPopular, env.Data.Endpoints[0].Endpoint)

	require.NotNil(t, completed)
	assert.Equal(t, 2, completed.Total.Created)
}

func TestHandler_Run_InvalidPages(t *testing.T) {
	f := newFixture(t, tmdb.EndpointPopular)
	router := newRouter(t, f, nil)

	for _, q := range []string{"0", "-1", "abc", "51"} {
		w := post(router, "/api/ingest/run/?pages="+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Empty(t, f.source.calls)
}

func TestHandler_Run_AlreadyRunning(t *testing.T) {
	f := newFixture(t, tmdb.EndpointPopular)
	f.service.running.Store(true)
	called := false
	router := newRouter(t, f, func(*Report) { called = true })

	w := post(router, "/api/ingest/run/")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INGEST_RUNNING")
	assert.False(t, called)
}
