package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/office-operations/internal/config"
)

// TestWindowKey verifies the bucket addressing: identical inside one
// window, distinct across windows, identities and policies.
func TestWindowKey(t *testing.T) {
	window := 15 * time.Minute
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	k1 := WindowKey("rl:general", "10.0.0.1", base, window)
	k2 := WindowKey("rl:general", "10.0.0.1", base.Add(14*time.Minute), window)
	assert.Equal(t, k1, k2, "two requests inside the same window share a counter")

	k3 := WindowKey("rl:general", "10.0.0.1", base.Add(window), window)
	assert.NotEqual(t, k1, k3, "the next window is a fresh counter")

	assert.NotEqual(t, k1, WindowKey("rl:general", "10.0.0.2", base, window))
	assert.NotEqual(t, k1, WindowKey("rl:login", "10.0.0.1", base, window))
}

// TestWindowRemainder verifies the TTL math: remainder plus elapsed time
// always spans exactly one window, and the remainder never exceeds it.
func TestWindowRemainder(t *testing.T) {
	window := time.Minute

	// Exactly on a window boundary the whole window remains.
	boundary := time.UnixMilli(0).Add(5 * window)
	assert.Equal(t, window, windowRemainder(boundary, window))

	mid := boundary.Add(45 * time.Second)
	assert.Equal(t, 15*time.Second, windowRemainder(mid, window))

	// The remainder is what the bucket TTL is set to, so it must stay
	// positive for any instant.
	for _, offset := range []time.Duration{0, time.Millisecond, 59 * time.Second, 59999 * time.Millisecond} {
		got := windowRemainder(boundary.Add(offset), window)
		assert.Greater(t, got, time.Duration(0), "offset %v", offset)
		assert.LessOrEqual(t, got, window, "offset %v", offset)
	}
}

// fakeBuckets counts per key in memory, behaving like the Lua script: one
// atomic increment per request, fresh count per bucket key.
type fakeBuckets struct {
	counts map[string]int64
	err    error
}

func newFakeBuckets() *fakeBuckets {
	return &fakeBuckets{counts: make(map[string]int64)}
}

func (f *fakeBuckets) incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

// expire throws the buckets away, which is exactly what happens in Redis
// when a window ends and its key's TTL fires.
func (f *fakeBuckets) expire() {
	f.counts = make(map[string]int64)
}

// TestFixedWindowCounting drives one identity through a full window: every
// request up to the limit passes with a decreasing remainder, the first
// request over it is rejected with a retry hint, and a fresh window starts
// clean.
func TestFixedWindowCounting(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Max: 5, Window: 15 * time.Minute, Prefix: "rl:test"}
	buckets := newFakeBuckets()
	mw := fixedWindow(cfg, buckets)

	for i := 1; i <= cfg.Max; i++ {
		rec, called := invokeLimiter(t, mw)
		assert.True(t, called, "request %d", i)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(cfg.Max-i), rec.Header().Get("X-RateLimit-Remaining"), "request %d", i)
	}

	rec, called := invokeLimiter(t, mw)
	assert.False(t, called, "request over the limit must not reach the handler")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")

	// Window rollover: the old bucket expires and counting restarts.
	buckets.expire()
	rec, called = invokeLimiter(t, mw)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}

// TestFixedWindowCounterError verifies fail-open at the seam: an increment
// error admits the request without rate-limit headers.
func TestFixedWindowCounterError(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Max: 1, Window: time.Minute, Prefix: "rl:test"}
	buckets := newFakeBuckets()
	buckets.err = errors.New("backend down")

	rec, called := invokeLimiter(t, fixedWindow(cfg, buckets))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func invokeLimiter(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.RemoteAddr = "10.1.2.3:40000"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, called
}

// TestFixedWindowPassThrough verifies that a disabled policy or a missing
// Redis client collapses the limiter to a pass-through.
func TestFixedWindowPassThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer func() { _ = rdb.Close() }()

	disabled := config.RateLimitConfig{Enabled: false, Max: 1, Window: time.Minute, Prefix: "rl:test"}
	rec, called := invokeLimiter(t, NewFixedWindow(disabled, rdb))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	enabled := config.RateLimitConfig{Enabled: true, Max: 1, Window: time.Minute, Prefix: "rl:test"}
	rec, called = invokeLimiter(t, NewFixedWindow(enabled, nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestFixedWindowFailOpen verifies the stated failure policy: with Redis
// unreachable the request is admitted, not rejected.
func TestFixedWindowFailOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer func() { _ = rdb.Close() }()

	cfg := config.RateLimitConfig{Enabled: true, Max: 1, Window: time.Minute, Prefix: "rl:test"}
	rec, called := invokeLimiter(t, NewFixedWindow(cfg, rdb))
	assert.True(t, called, "fail-open: the handler still runs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"), "no headers without a counter value")
}

// TestPolicyDefaults pins the shipped policies: 100 per 15 minutes for
// general traffic, 5 per 15 minutes for login attempts.
func TestPolicyDefaults(t *testing.T) {
	general := config.LoadRateLimitConfig()
	assert.True(t, general.Enabled)
	assert.Equal(t, 100, general.Max)
	assert.Equal(t, 15*time.Minute, general.Window)
	assert.Equal(t, "rl:general", general.Prefix)

	login := config.LoadLoginRateLimitConfig()
	assert.Equal(t, 5, login.Max)
	assert.Equal(t, 15*time.Minute, login.Window)
	assert.Equal(t, "rl:login", login.Prefix)
}
