package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter implements a fixed-window rate limiter in process memory.
// It is used when Redis is not configured.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*client
	limit       int           // Maximum requests per window
	window      time.Duration // Time window
	cleanupTick time.Duration // Cleanup interval
}

type client struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a new in-memory rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*client),
		limit:       limit,
		window:      window,
		cleanupTick: window * 2, // Cleanup every 2 windows
	}
	go rl.cleanup()
	return rl
}

// cleanup removes expired clients periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, c := range rl.clients {
			if now.Sub(c.lastReset) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, exists := rl.clients[key]

	if !exists {
		rl.clients[key] = &client{
			tokens:    rl.limit - 1,
			lastReset: now,
		}
		return Decision{Allowed: true, Limit: rl.limit, Remaining: rl.limit - 1}, nil
	}

	// Reset tokens if window has passed
	if now.Sub(c.lastReset) >= rl.window {
		c.tokens = rl.limit - 1
		c.lastReset = now
		return Decision{Allowed: true, Limit: rl.limit, Remaining: c.tokens}, nil
	}

	if c.tokens > 0 {
		c.tokens--
		return Decision{Allowed: true, Limit: rl.limit, Remaining: c.tokens}, nil
	}

	return Decision{
		Allowed:    false,
		Limit:      rl.limit,
		Remaining:  0,
		RetryAfter: rl.window - now.Sub(c.lastReset),
	}, nil
}

// RedisRateLimiter implements a fixed-window rate limiter backed by Redis,
// shared across server instances.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

// NewRedisRateLimiter creates a Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit:",
	}
}

// Allow increments the counter for the current window and checks the limit
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := rl.keyPrefix + key

	pipe := rl.client.TxPipeline()
	countCmd := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, rl.window)
	ttlCmd := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := countCmd.Val()
	remaining := rl.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Allowed:   count <= int64(rl.limit),
		Limit:     rl.limit,
		Remaining: remaining,
	}
	if !decision.Allowed {
		retryAfter := ttlCmd.Val()
		if retryAfter <= 0 {
			retryAfter = rl.window
		}
		decision.RetryAfter = retryAfter
	}
	return decision, nil
}

// RateLimit returns a rate limiting middleware keyed by authenticated user,
// falling back to client IP for anonymous requests. Limiter failures are
// logged by the limiter and fail open.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if userID := GetJWTUserID(c); userID != "" {
			return "user:" + userID
		}
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open so a limiter outage does not take the API down
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(decision.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Next()
	}
}

// AuthRateLimit limits authentication attempts per client IP. It uses its
// own key prefix so login attempts are counted separately from API traffic.
func AuthRateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:ip:" + c.ClientIP()

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(decision.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_RATE_LIMIT_EXCEEDED",
					"message": "Too many authentication attempts. Please try again later.",
				},
			})
			return
		}

		c.Next()
	}
}

// retryAfterSeconds rounds a retry delay up to whole seconds, minimum 1.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
