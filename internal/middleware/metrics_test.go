package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/service"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.PUT("/assignments/:id", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, id := range []string{"row-1", "row-2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/assignments/"+id, nil))
		require.Equal(t, http.StatusForbidden, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	scrape := string(body)
	assert.Contains(t, scrape, `http_requests_total{method="PUT",path="/assignments/:id",status="403"} 2`)
	assert.Contains(t, scrape, `path="unmatched"`)
	assert.NotContains(t, scrape, `path="/metrics"`)
}

func TestMetricsWithoutServicePassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/terms", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/terms", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
