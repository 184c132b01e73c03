package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcompare/gcompare_api/internal/utils"
)

// SearchRateLimiter throttles search requests per client IP. Each search
// fans out to every platform, so an abusive client multiplies outbound
// load; the window keeps that bounded.
type SearchRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewSearchRateLimiter creates a limiter allowing limit requests per window
// per IP and starts its cleanup loop.
func NewSearchRateLimiter(limit int, window time.Duration) *SearchRateLimiter {
	rl := &SearchRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// Handle rejects requests over the per-IP budget with 429.
func (r *SearchRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.allow(c.ClientIP()) {
			utils.Error(c, 429, "RATE_LIMITED", "Too many search requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow checks if ip can make another request within the current window.
func (r *SearchRateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, exists := r.attempts[ip]
	if !exists {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	// Reset if window expired
	if now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

func (r *SearchRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, info := range r.attempts {
			if now.Sub(info.firstAt) > r.window {
				delete(r.attempts, ip)
			}
		}
		r.mu.Unlock()
	}
}
