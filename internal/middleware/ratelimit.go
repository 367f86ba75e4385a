package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/office-operations/internal/config"
)

// Fixed-window rate limiting.  Requests are counted in discrete windows of
// cfg.Window per client identity; the counter lives in Redis and is
// incremented atomically by a Lua script, so the bound holds no matter
// which process behind the load balancer serves the request.  The bucket
// key embeds the window start and carries a TTL to the window's end, so
// counters clean themselves up.
//
// Failure policy: fail-open.  When Redis is unreachable (or the client is
// nil) the limiter admits the request.  Losing throttling for the outage
// window is the lesser harm against rejecting all traffic; the login
// limiter inherits the same policy because login attempts stay bounded by
// bcrypt verification cost.
var windowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[1]))
	end
	return current
`)

// counter increments the bucket for one key and returns the new count.
// redisCounter is the production implementation; tests substitute their own
// to drive the decision branches without a live backend.
type counter interface {
	incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type redisCounter struct{ rdb *redis.Client }

func (r redisCounter) incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return windowScript.Run(ctx, r.rdb, []string{key}, ttl.Milliseconds()).Int64()
}

// NewFixedWindow builds the limiter middleware for one policy.  With the
// policy disabled or no Redis client, it collapses to a pass-through.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return fixedWindow(cfg, redisCounter{rdb: rdb})
}

func fixedWindow(cfg config.RateLimitConfig, buckets counter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := c.RealIP()
			if identity == "" {
				identity = "unknown"
			}
			now := time.Now()
			key := WindowKey(cfg.Prefix, identity, now, cfg.Window)
			remain := windowRemainder(now, cfg.Window)

			count, err := buckets.incr(c.Request().Context(), key, remain)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				}
				return next(c) // fail-open, see policy above
			}

			remaining := int64(cfg.Max) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Max) {
				secs := int(math.Ceil(remain.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s count=%d retry=%ds", key, count, secs)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "Too many requests, please try again later.",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// WindowKey builds the bucket key for one identity in the window containing
// now.  Embedding the window start makes every window a fresh counter.
func WindowKey(prefix, identity string, now time.Time, window time.Duration) string {
	start := now.UnixMilli() / window.Milliseconds()
	return prefix + ":" + identity + ":" + strconv.FormatInt(start, 10)
}

// windowRemainder is how long the window containing now still lasts; used
// as the bucket TTL and the Retry-After hint.
func windowRemainder(now time.Time, window time.Duration) time.Duration {
	elapsed := now.UnixMilli() % window.Milliseconds()
	return time.Duration(window.Milliseconds()-elapsed) * time.Millisecond
}
