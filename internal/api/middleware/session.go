package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gympulse/gateway/internal/core/ports"
	"github.com/gympulse/gateway/internal/infrastructure/apiclient"
)

const (
	ctxSessionID = "session_id"
	ctxSession   = "session"

	// HeaderCurrentPath lets the browser report the screen it is on when it
	// calls the API through the gateway.
	HeaderCurrentPath = "X-Current-Path"
)

// CookieConfig shapes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session binds every request to a browser session. A missing or malformed
// cookie starts a new session with a fresh random id.
func Session(provider ports.SessionProvider, cfg CookieConfig) echo.MiddlewareFunc {
	if cfg.Name == "" {
		cfg.Name = "gympulse_sid"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(sessionCookie(cfg, id))
			}

			req := c.Request()
			ctx := apiclient.WithNavigation(req.Context(), navigationTarget(req))
			c.SetRequest(req.WithContext(ctx))

			c.Set(ctxSessionID, id)
			c.Set(ctxSession, provider.Session(ctx, id))
			return next(c)
		}
	}
}

func sessionCookie(cfg CookieConfig, id string) *http.Cookie {
	ck := &http.Cookie{
		Name:     cfg.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.MaxAge > 0 {
		ck.MaxAge = int(cfg.MaxAge / time.Second)
	}
	return ck
}

// navigationTarget is the screen the browser is on: the page itself for page
// requests, the reported screen for API calls.
func navigationTarget(req *http.Request) string {
	if p := req.Header.Get(HeaderCurrentPath); p != "" {
		return p
	}
	if ref := req.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return req.URL.Path
}

// SessionFrom returns the session bound by Session.
func SessionFrom(c echo.Context) (ports.SessionService, bool) {
	s, ok := c.Get(ctxSession).(ports.SessionService)
	return s, ok
}

// SessionIDFrom returns the raw browser session id bound by Session.
func SessionIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxSessionID).(string)
	return id
}

// RedirectStatus is 302 for safe reads and 303 otherwise, so a redirected
// form post is followed with a GET.
func RedirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
