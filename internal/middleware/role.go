package middleware

import (
	"context"
	"net/http"

	"nexus/internal/domain"
	"nexus/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireStaff must run after JWTAuth. It rejects users without is_staff.
func RequireStaff(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(ContextUserID)
		if userID == 0 {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || !u.IsStaff {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: staff only")
			return
		}

		c.Next()
	}
}
