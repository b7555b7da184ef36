package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// InMemoryRateLimiter counts requests per key (client IP) over a sliding
// window. State lives in process memory; a background sweep evicts keys that
// have gone quiet so the map does not grow with one-off clients.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	limit   int
	window  time.Duration
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	l := &InMemoryRateLimiter{
		buckets: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
	go l.sweep()
	return l
}

// Allow records a hit for key and reports whether it stays under the limit.
func (l *InMemoryRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	kept := l.prune(key, now)
	if len(kept) >= l.limit {
		return false
	}
	l.buckets[key] = append(kept, now)
	return true
}

// prune drops hits older than the window, reusing the backing array. Caller
// holds the lock.
func (l *InMemoryRateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.buckets[key][:0]
	for _, t := range l.buckets[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (l *InMemoryRateLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for key := range l.buckets {
			if kept := l.prune(key, now); len(kept) == 0 {
				delete(l.buckets, key)
			} else {
				l.buckets[key] = kept
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit returns a middleware that limits by client IP.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
