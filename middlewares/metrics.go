package middlewares

import (
	"time"

	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
)

// Metrics records request latency by matched route.
func Metrics(m *services.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
