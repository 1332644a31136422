package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skillmatch-backend/pkg/security"
)

// fakeScripter answers EvalSha with a fixed {count, ttl} or an error.
type fakeScripter struct {
	count, ttl int64
	err        error
	keys       []string
}

func (f *fakeScripter) reply(ctx context.Context, keys []string) *goredis.Cmd {
	f.keys = append(f.keys, keys...)
	cmd := goredis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.count++
	cmd.SetVal([]interface{}{f.count, f.ttl})
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *goredis.Cmd {
	return f.reply(ctx, keys)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *goredis.Cmd {
	return f.reply(ctx, keys)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *goredis.Cmd {
	return f.reply(ctx, keys)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *goredis.Cmd {
	return f.reply(ctx, keys)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *goredis.BoolSliceCmd {
	return goredis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *goredis.StringCmd {
	return goredis.NewStringCmd(ctx)
}

func newTestLimiter(now *time.Time) *RateLimiter {
	rl := NewRateLimiter(nil, security.NewSecurityLogger(zap.NewNop(), "skillmatch-test", "test"))
	rl.now = func() time.Time { return *now }
	return rl
}

func limitedEngine(rl *RateLimiter, cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func hit(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_LocalBucketBlocksThenRefills(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	r := limitedEngine(rl, GlobalRateLimitConfig(3, time.Minute))

	for i := 0; i < 3; i++ {
		w := hit(r, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(2-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := hit(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "20", w.Header().Get("Retry-After"))

	// other clients keep their own bucket
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code)

	// one token every 20s
	now = now.Add(20 * time.Second)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1").Code)
}

func TestRateLimiter_EvictDropsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	r := limitedEngine(rl, GlobalRateLimitConfig(1, time.Minute))

	hit(r, "10.0.0.1")
	now = now.Add(2 * time.Minute)
	hit(r, "10.0.0.2")

	rl.evict(time.Minute)

	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "rl:ip:10.0.0.2")
}

func TestRateLimiter_RedisFixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	redis := &fakeScripter{ttl: 42}
	rl.redis = redis
	r := limitedEngine(rl, AuthRateLimitConfig(2, time.Minute))

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.9").Code)

	w := hit(r, "10.0.0.9")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "rl:auth:10.0.0.9", redis.keys[0])
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_RedisFailure(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("falls back to local bucket", func(t *testing.T) {
		rl := newTestLimiter(&now)
		rl.redis = &fakeScripter{err: errors.New("dial tcp: connection refused")}
		r := limitedEngine(rl, GlobalRateLimitConfig(1, time.Minute))

		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.3").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.3").Code)
	})

	t.Run("fail closed", func(t *testing.T) {
		rl := newTestLimiter(&now)
		rl.redis = &fakeScripter{err: errors.New("dial tcp: connection refused")}
		cfg := AuthRateLimitConfig(5, time.Minute)
		cfg.FailClosed = true
		r := limitedEngine(rl, cfg)

		assert.Equal(t, http.StatusServiceUnavailable, hit(r, "10.0.0.3").Code)
	})
}
