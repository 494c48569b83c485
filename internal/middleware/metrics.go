package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workload-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency labelled by route template, so
// /assignments/:id stays one series however many rows exist. Requests to the
// skipped paths, typically the scrape and health endpoints, are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
