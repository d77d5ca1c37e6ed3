package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Middleware throttles requests per client IP and route. Limiter failures are
// logged and the request is let through.
func Middleware(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		decision := ResolveLimit(manager.Settings(), route)
		decision.ClientIP = c.ClientIP()

		result, errAllow := manager.Allow(c.Request.Context(), decision)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit: check failed")
			c.Next()
			return
		}
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			metrics.RecordRateLimited(decision.Route)
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(result.Reset, manager.now())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(reset, now time.Time) int {
	seconds := int(math.Ceil(reset.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
