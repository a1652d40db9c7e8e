package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexus/internal/domain"
	"nexus/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens struct {
	live map[int64]string
	err  error
}

func (f *fakeTokens) Exists(_ context.Context, userID int64, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.live[userID] == key, nil
}

func protectedRouter(t *testing.T, jwtService *jwt.Service, tokens TokenChecker) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(JWTAuth(jwtService, tokens))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetInt64(ContextUserID),
			"token_key": c.GetString(ContextTokenKey),
		})
	})
	return router
}

func doAuth(router http.Handler, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour)
	validToken, err := jwtService.GenerateToken(42, "key-42")
	require.NoError(t, err)

	router := protectedRouter(t, jwtService, &fakeTokens{live: map[int64]string{42: "key-42"}})

	for _, scheme := range []string{"Bearer ", "Token ", "bearer "} {
		w := doAuth(router, scheme+validToken)
		assert.Equal(t, http.StatusOK, w.Code, scheme)
		assert.Contains(t, w.Body.String(), `"user_id":42`)
		assert.Contains(t, w.Body.String(), "key-42")
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	router := protectedRouter(t, jwt.New("wrong-secret", time.Hour), &fakeTokens{})

	w := doAuth(router, "Bearer invalid-jwt-here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuth_NoToken(t *testing.T) {
	router := protectedRouter(t, jwt.New("secret", time.Hour), &fakeTokens{})

	w := doAuth(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_HEADER_MISSING")
}

func TestJWTAuth_WrongFormat(t *testing.T) {
	router := protectedRouter(t, jwt.New("secret", time.Hour), &fakeTokens{})

	for _, h := range []string{"Basic dGVzdA==", "Bearer", "Bearer   "} {
		w := doAuth(router, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT", h)
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	token, err := jwtService.GenerateToken(7, "old-key")
	require.NoError(t, err)

	router := protectedRouter(t, jwtService, &fakeTokens{live: map[int64]string{7: "new-key"}})

	w := doAuth(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestJWTAuth_LookupFailure(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	token, err := jwtService.GenerateToken(7, "k")
	require.NoError(t, err)

	router := protectedRouter(t, jwtService, &fakeTokens{err: errors.New("db down")})

	w := doAuth(router, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type fakeUsers map[int64]*domain.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestRequireStaff(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1, IsStaff: true},
		2: {ID: 2},
	}

	newRouter := func(userID int64) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if userID != 0 {
				c.Set(ContextUserID, userID)
			}
		})
		r.Use(RequireStaff(users))
		r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	tests := []struct {
		name   string
		userID int64
		want   int
	}{
		{"staff", 1, http.StatusOK},
		{"regular user", 2, http.StatusForbidden},
		{"unknown user", 3, http.StatusForbidden},
		{"anonymous", 0, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
