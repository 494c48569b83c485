package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/service"
)

// RequestMeta carries the client address and user agent into the request
// context so audit entries can record them.
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestMeta(c.Request.Context(), service.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
