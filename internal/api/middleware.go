package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"merchant-backoffice/internal/logging"
)

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}

// APIKeyAuthMiddleware guards the integration surface: requests must carry a
// known X-API-Key and stay under the per-key hourly budget. The counter is
// in-memory only, so it resets on restart and is not shared between
// instances.
func APIKeyAuthMiddleware(keys []string, limiter *HourlyLimiter, logger *logging.Logger) gin.HandlerFunc {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" || !known[key] {
			logger.Warnf("Rejected integration request with unknown API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		if !limiter.Allow(key, time.Now()) {
			logger.Warnf("Rate limit exceeded for API key")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "hourly rate limit exceeded"})
			return
		}
		c.Next()
	}
}
