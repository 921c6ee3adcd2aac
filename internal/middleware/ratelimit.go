package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/epeers/fundledger/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// defaultMaxLimiters is the map size past which idle buckets are swept
const defaultMaxLimiters = 10000

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	every    time.Duration
	burst    int
	maxKeys  int
	now      func() time.Time
}

// NewRateLimiter allows requestsPerMinute per caller, bursting up to the same amount
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		every:    time.Minute / time.Duration(requestsPerMinute),
		burst:    requestsPerMinute,
		maxKeys:  defaultMaxLimiters,
		now:      time.Now,
	}
}

// Allow reports whether key may make another request now
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= rl.maxKeys {
			rl.sweep(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(rl.every), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets idle long enough to have refilled completely; a fresh
// bucket behaves identically. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	idle := rl.every * time.Duration(rl.burst)
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= idle {
			delete(rl.limiters, key)
		}
	}
}

// Len returns the number of tracked callers
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// RateLimit throttles callers by client IP. X-User-ID is not verified, so it
// cannot key a bucket. A non-positive limit disables throttling.
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(requestsPerMinute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limited",
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}
