package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// newLimiter builds an in-memory limiter from a "count-period" rate
// string such as "500-D" or "5-M".
func newLimiter(formatted string) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.Fatalf("invalid throttle rate %q: %v", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate)
}

// userRateLimit enforces the authenticated-caller quota, keyed per user
// id. It runs after jwtAuthMiddleware, so unauthenticated requests have
// already been rejected and never consume quota.
func userRateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}
		check(c, l, fmt.Sprintf("user:%d", caller))
	}
}

// anonRateLimit enforces the anonymous quota, keyed per client address.
func anonRateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		check(c, l, "ip:"+c.ClientIP())
	}
}

func check(c *gin.Context, l *limiter.Limiter, key string) {
	lctx, err := l.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
		c.Abort()
		return
	}
	if lctx.Reached {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "request was throttled"})
		c.Abort()
		return
	}
	c.Next()
}
