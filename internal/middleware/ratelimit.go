package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/workload-api/pkg/errors"
	"github.com/noah-isme/workload-api/pkg/response"
)

// RateCounter is a fixed-window counter, usually backed by Redis.
type RateCounter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitObserver records rejected requests.
type RateLimitObserver interface {
	RecordRateLimited()
}

// RateLimit bounds mutating requests per user (or per client IP before login).
// Safe methods pass through. Counter failures let the request through.
func RateLimit(counter RateCounter, observer RateLimitObserver, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if claims := CurrentUser(c); claims != nil {
			subject = "user:" + claims.UserID
		}
		allowed, err := counter.Allow(c.Request.Context(), "workload:ratelimit:"+subject, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
		}
		if !allowed {
			if observer != nil {
				observer.RecordRateLimited()
			}
			c.Header("Retry-After", retryAfter(window))
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func retryAfter(window time.Duration) string {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
