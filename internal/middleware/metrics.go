package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route, keeping raw paths out of metric labels.
const unmatchedRoute = "unmatched"

// Metrics returns middleware that records request count and latency per route template.
// Requests to any of the skip paths (scrapes and probes) are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
