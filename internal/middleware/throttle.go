package middleware

import (
	"math"
	"strconv"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/throttle"

	"github.com/gin-gonic/gin"
)

// Throttle rejects clients that exceed the limiter's budget with 429. Clients
// are keyed by IP and route.
func Throttle(limiter *throttle.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + " " + c.FullPath()
		ok, retryAfter := limiter.Allow(key)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			abort(c, apperr.ErrThrottled)
			return
		}
		c.Next()
	}
}
