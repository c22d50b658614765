package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-defense-api/internal/service"
)

// Metrics records per-route request counts and latency. Unmatched routes fall
// back to the raw path so 404 probes do not explode label cardinality on
// matched routes.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
