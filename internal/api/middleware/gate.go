package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/api/metrics"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/service"
)

const ctxSessionState = "session_state"

// Gate enforces rule on the bound session. While the session is still
// resolving the request waits up to wait; if it is still loading after that
// the gateway answers 503 rather than redirecting.
func Gate(rule domain.RouteRule, wait time.Duration, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, domain.ErrSessionNotFound.Error())
			}

			state := session.State()
			if state.IsLoading() && rule.Access != domain.AccessPublic {
				ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
				state = session.Await(ctx)
				cancel()
			}

			d := service.Decide(state, rule)
			m.GateDecision(rule.Page, d.Outcome)

			switch d.Outcome {
			case domain.OutcomeAllow:
				c.Set(ctxSessionState, state)
				return next(c)
			case domain.OutcomeRedirectHome:
				// An identity whose home is the page it was refused would loop.
				if d.Target == c.Request().URL.Path {
					return echo.NewHTTPError(http.StatusForbidden, "role not allowed")
				}
				return c.Redirect(RedirectStatus(c.Request().Method), d.Target)
			case domain.OutcomeRedirectLogin:
				return c.Redirect(RedirectStatus(c.Request().Method), d.Target)
			default:
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still resolving")
			}
		}
	}
}

// StateFrom returns the session state the gate decided on.
func StateFrom(c echo.Context) (domain.SessionState, bool) {
	s, ok := c.Get(ctxSessionState).(domain.SessionState)
	return s, ok
}
