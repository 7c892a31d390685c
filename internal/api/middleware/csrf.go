package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
)

const csrfCookieName = "gympulse_csrf"

// CSRFConfig configures form-post protection.
type CSRFConfig struct {
	// Key is the 32-byte authentication key. An empty key disables CSRF.
	Key            []byte
	Secure         bool
	TrustedOrigins []string
}

// CSRF protects form submissions. JSON requests are exempt: browsers cannot
// send them cross-origin without a preflight.
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	if len(cfg.Key) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	protect := csrf.Protect(
		cfg.Key,
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)
	wrap := echo.WrapMiddleware(protect)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		protected := wrap(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				return next(c)
			}
			if !cfg.Secure {
				c.SetRequest(csrf.PlaintextHTTPRequest(c.Request()))
			}
			return protected(c)
		}
	}
}

// CSRFToken returns the masked token for the current request, or "" when CSRF
// protection is off.
func CSRFToken(c echo.Context) string {
	return csrf.Token(c.Request())
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"invalid CSRF token"}`))
}
