package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Throttler counts attempts per subject.
type Throttler interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// LoginThrottle limits login and registration attempts per client IP. It is a
// no-op without a throttler and fails open when the throttler errors.
func LoginThrottle(t Throttler, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if t == nil {
			return next
		}
		return func(c echo.Context) error {
			ok, err := t.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("login throttle unavailable")
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
			}
			return next(c)
		}
	}
}
