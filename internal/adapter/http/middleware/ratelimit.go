package middleware

import (
	"strconv"
	"sync"
	"time"

	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a process-local fixed-window rate limiter. Each key holds a
// counter and the instant its window expires; an expired window starts over
// with a fresh budget. Every call sweeps out expired entries, which bounds
// the map to keys active within the last window.
type RateLimiter struct {
	mu          sync.Mutex
	entries     map[string]rateLimitEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter creates a limiter admitting maxRequests per window per key.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		entries:     make(map[string]rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow reports whether a request for key is admitted and records it if so.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	for k, e := range l.entries {
		if !e.resetAt.After(now) {
			delete(l.entries, k)
		}
	}

	e, ok := l.entries[key]
	if !ok {
		// First request of a window. The sweep above already removed an
		// expired entry, so this branch also covers the reset case.
		l.entries[key] = rateLimitEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if e.count >= l.maxRequests {
		return false
	}

	e.count++
	l.entries[key] = e
	return true
}

// Remaining reports how many requests key may still make in its current window.
func (l *RateLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !e.resetAt.After(l.now()) {
		return l.maxRequests
	}
	if e.count >= l.maxRequests {
		return 0
	}
	return l.maxRequests - e.count
}

// RetryAfter reports how long until key's window resets. Zero means the next
// request starts a fresh window.
func (l *RateLimiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return 0
	}
	d := e.resetAt.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}

// RateLimit creates a middleware that admits requests per client IP.
func RateLimit(limiter *RateLimiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			retryAfter := int(limiter.RetryAfter(key).Seconds() + 0.5)
			log.Warn().Str("client_ip", key).Msg("rate limit exceeded")
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.maxRequests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
