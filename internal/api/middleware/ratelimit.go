package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/api/metrics"
)

// AttemptLimiter is implemented by the redis-backed login limiter.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitLogin throttles login attempts per client IP. The limiter is
// best-effort: if the backing store is unreachable the request proceeds, on
// the grounds that a redis outage should not lock everyone out.
func RateLimitLogin(limiter AttemptLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("login rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Too many login attempts. Try again in a minute.",
				})
			}
			return next(c)
		}
	}
}
