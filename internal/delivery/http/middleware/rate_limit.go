package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/security"
)

// RateLimitConfig holds configuration for one rate-limited route group
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Key prefix in Redis and in the local limiter table
	KeyPrefix string
	// Reject instead of falling back when Redis errors
	FailClosed bool
	KeyFunc    func(*gin.Context) string
}

func clientIP(c *gin.Context) string { return c.ClientIP() }

// GlobalRateLimitConfig applies to every /v1 route
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:", KeyFunc: clientIP}
}

// AuthRateLimitConfig applies to register and login
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:auth:", KeyFunc: clientIP}
}

// KEYS[1] = counter key, ARGV[1] = window in seconds. Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

var rateLimitScript = goredis.NewScript(rateLimitLuaScript)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter counts requests in Redis when a client is configured and falls
// back to per-process token buckets otherwise.
type RateLimiter struct {
	redis     goredis.Scripter
	secLogger *security.SecurityLogger

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter accepts a nil client for single-instance deployments.
func NewRateLimiter(client *goredis.Client, secLogger *security.SecurityLogger) *RateLimiter {
	rl := &RateLimiter{
		secLogger: secLogger,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
	if client != nil {
		rl.redis = client
	}
	return rl
}

// RunCleanup evicts idle local limiters until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(idle)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	cutoff := rl.now().Add(-idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// Middleware enforces cfg on every request passing through it
func (rl *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)

		var (
			allowed   bool
			remaining int
			resetAt   time.Time
			err       error
		)
		if rl.redis != nil {
			allowed, remaining, resetAt, err = rl.checkRedis(c.Request.Context(), key, cfg)
			if err != nil {
				logger.Log.Warn("Redis rate limit check failed", "key_prefix", cfg.KeyPrefix, "error", err)
				if cfg.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					return
				}
				allowed, remaining, resetAt = rl.checkLocal(key, cfg)
			}
		} else {
			allowed, remaining, resetAt = rl.checkLocal(key, cfg)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if !allowed {
			retryAfter := int(math.Ceil(resetAt.Sub(rl.now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			rl.secLogger.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"),
				c.GetString(response.RequestIDKey), c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			return
		}

		c.Next()
	}
}

// checkRedis implements a fixed window shared across instances.
func (rl *RateLimiter) checkRedis(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, time.Time, error) {
	window := int(cfg.Window.Seconds())
	if window < 1 {
		window = 1
	}

	result, err := rateLimitScript.Run(ctx, rl.redis, []string{key}, window).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) < 2 {
		return false, 0, time.Time{}, fmt.Errorf("rate limit script: unexpected result %v", result)
	}

	count, ttl := int(result[0]), result[1]
	if ttl < 0 {
		ttl = int64(window)
	}
	resetAt := rl.now().Add(time.Duration(ttl) * time.Second)
	return count <= cfg.Limit, max(cfg.Limit-count, 0), resetAt, nil
}

// checkLocal uses a token bucket refilled at Limit per Window with a burst of Limit.
func (rl *RateLimiter) checkLocal(key string, cfg RateLimitConfig) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		every := cfg.Window / time.Duration(max(cfg.Limit, 1))
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), cfg.Limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)

	// time until one token is available again
	var wait time.Duration
	if tokens < 1 {
		wait = time.Duration((1 - tokens) / float64(v.limiter.Limit()) * float64(time.Second))
	}
	return allowed, remaining, now.Add(wait)
}
