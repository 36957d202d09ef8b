package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// WindowCounter counts hits for key inside a fixed window. It returns the
// count so far and how long until the window resets.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type redisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) WindowCounter {
	return &redisCounter{client: client}
}

func (r *redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}
	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// Key lost its expiry; restart the window.
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return count, ttl, nil
}

type RateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	prefix  string
	log     zerolog.Logger
}

// NewRateLimiter builds a fixed window limiter. A nil counter disables it.
func NewRateLimiter(counter WindowCounter, prefix string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, limit: limit, window: window, prefix: prefix, log: log}
}

func (rl *RateLimiter) Middleware(keyFn func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl.counter == nil || rl.limit <= 0 {
				return next(c)
			}

			key := "ratelimit:" + rl.prefix + ":" + keyFn(c)
			count, ttl, err := rl.counter.Hit(c.Request().Context(), key, rl.window)
			if err != nil {
				// Fail open; the limiter must never take auth down with it.
				rl.log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}

			if count > int64(rl.limit) {
				retryAfter := int(ttl.Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"error": echo.Map{
						"code":    "rate_limited",
						"message": "Too many requests. Please try again shortly.",
					},
				})
			}
			return next(c)
		}
	}
}

// KeyByIP rate limits unauthenticated endpoints by client address
func KeyByIP(c echo.Context) string {
	return c.RealIP()
}
