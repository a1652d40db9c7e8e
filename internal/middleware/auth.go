package middleware

import (
	"context"
	"net/http"
	"strings"

	"nexus/internal/pkg/jwt"
	"nexus/internal/pkg/logger"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth.
const (
	ContextUserID   = "user_id"
	ContextTokenKey = "token_key"
)

// TokenChecker reports whether a token key is still live for a user.
type TokenChecker interface {
	Exists(ctx context.Context, userID int64, key string) (bool, error)
}

// JWTAuth accepts "Bearer <jwt>" or "Token <jwt>", verifies the signature
// and expiry, then checks that the token has not been revoked.
func JWTAuth(jwtService *jwt.Service, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		scheme, tokenStr, ok := strings.Cut(h, " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || tokenStr == "" || !(strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		live, err := tokens.Exists(c.Request.Context(), claims.UserID, claims.ID)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("token lookup failed")
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if !live {
			response.Abort(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTokenKey, claims.ID)
		c.Next()
	}
}
