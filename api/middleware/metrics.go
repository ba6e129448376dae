package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"news-hub/metrics"
)

// Metrics records request count and latency per matched route template, so
// /api/articles/:id is one series regardless of id.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
