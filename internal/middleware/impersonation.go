package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/response"
)

// ImpersonateHeader names the user an administrator wants to act as.
const ImpersonateHeader = "X-Impersonate-User"

// Impersonator swaps an administrator's claims for another user's.
type Impersonator interface {
	Impersonate(ctx context.Context, admin *models.JWTClaims, targetID string) (*models.JWTClaims, error)
}

// Impersonation replaces the current claims when the header is present. It
// must run after JWT. Non-admins sending the header are rejected.
func Impersonation(impersonator Impersonator) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := strings.TrimSpace(c.GetHeader(ImpersonateHeader))
		claims := CurrentUser(c)
		if target == "" || claims == nil || target == claims.UserID {
			c.Next()
			return
		}

		swapped, err := impersonator.Impersonate(c.Request.Context(), claims, target)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, swapped)
		c.Header(ImpersonateHeader, swapped.UserID)
		c.Next()
	}
}
