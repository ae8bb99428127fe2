package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsRouter(m *services.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/game/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestMetrics_NilCollectorsServeRequest(t *testing.T) {
	router := newMetricsRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/game/5", nil)
	assert.NotPanics(t, func() { router.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics_RecordsMatchedRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newMetricsRouter(services.NewMetrics(reg))

	for _, path := range []string{"/game/5", "/missing"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]uint64{}
	for _, family := range families {
		if family.GetName() != "gamenest_http_request_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					counts[label.GetValue()] += metric.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	assert.Equal(t, uint64(1), counts["/game/:id"])
	assert.Equal(t, uint64(1), counts["unmatched"])
}
