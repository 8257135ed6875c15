package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit admits rpm requests per minute across all callers, with a burst
// of a sixth of that. A non-positive rpm disables limiting. onLimited, when
// set, is called for each rejected request.
func RateLimit(rpm int, onLimited func()) gin.HandlerFunc {
	if rpm <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(1, rpm/6))

	return func(c *gin.Context) {
		if !limiter.Allow() {
			if onLimited != nil {
				onLimited()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
