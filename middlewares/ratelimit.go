package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	last    time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	ips   sync.Map // map[string]*ipLimiter
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	v, _ := l.ips.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	il := v.(*ipLimiter)
	il.mu.Lock()
	il.last = time.Now()
	il.mu.Unlock()
	return il.limiter
}

// Middleware answers 429 once an IP exceeds its budget.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "RATE_LIMITED", "message": "too many requests"})
			return
		}
		c.Next()
	}
}

// Sweep forgets IPs idle for longer than maxIdle.
func (l *RateLimiter) Sweep(maxIdle time.Duration) {
	now := time.Now()
	l.ips.Range(func(key, val any) bool {
		il := val.(*ipLimiter)
		il.mu.Lock()
		idle := now.Sub(il.last)
		il.mu.Unlock()
		if idle > maxIdle {
			l.ips.Delete(key)
		}
		return true
	})
}

// RunSweeper calls Sweep every interval until ctx ends.
func (l *RateLimiter) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(maxIdle)
		}
	}
}
