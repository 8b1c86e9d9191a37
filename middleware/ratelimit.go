// middleware/ratelimit.go
package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/gofiber/fiber/v2"
)

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefillTime = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter keeps one bucket per client key.
type RateLimiter struct {
	name    string
	buckets map[string]*TokenBucket
	mu      sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(name string, maxRequests int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &RateLimiter{
		name:        name,
		buckets:     make(map[string]*TokenBucket),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RateLimiter) getBucket(key string, now time.Time) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / rl.window.Seconds()
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate, now)
		rl.buckets[key] = bucket
	}
	return bucket
}

func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	return rl.getBucket(key, now).allowAt(now)
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefillTime) > maxIdle {
			delete(rl.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// StartCleanup prunes idle buckets every 10 minutes until ctx is cancelled.
func StartCleanup(ctx context.Context, limiters ...*RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, rl := range limiters {
					rl.Cleanup(30 * time.Minute)
				}
			}
		}
	}()
}

// ================== FIBER MIDDLEWARE ==================

// RateLimit rejects clients that exceed the limiter's budget. A nil limiter disables limiting.
func RateLimit(rl *RateLimiter, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil {
			return c.Next()
		}
		path := c.Path()
		if path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/ws") {
			return c.Next()
		}

		if !rl.Allow(c.IP()) {
			metrics.RateLimiterRejections.WithLabelValues(rl.name).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		}
		return c.Next()
	}
}
