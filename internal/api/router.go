package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/gympulse/gateway/docs"
	"github.com/gympulse/gateway/internal/api/handler"
	"github.com/gympulse/gateway/internal/api/metrics"
	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
	"github.com/gympulse/gateway/internal/pkg/config"
)

const apiPrefix = "/api"

// Deps carries everything the router wires together. Redis, Mongo and
// Throttle are optional.
type Deps struct {
	Config   *config.Config
	Sessions ports.SessionProvider
	Throttle middleware.Throttler
	Redis    *redis.Client
	Mongo    *mongo.Database
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	cfg := d.Config
	target, err := url.Parse(cfg.API.BaseURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("api: invalid API_BASE_URL %q", cfg.API.BaseURL)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "gympulse_gateway",
		Registerer: d.Registry,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Per-browser session binding ---
	bound := []echo.MiddlewareFunc{
		middleware.Session(d.Sessions, middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TokenTTL,
		}),
		middleware.CSRF(middleware.CSRFConfig{
			Key:    []byte(cfg.Session.CSRFKey),
			Secure: cfg.Session.CookieSecure,
		}),
	}
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, bound...), extra...)
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(cfg.OAuthURL(), d.Metrics, d.Log)
	pageHandler := handler.NewPageHandler()
	sessionHandler := handler.NewSessionHandler(cfg.Session.ResolveWait)
	proxyHandler := handler.NewProxyHandler(target, apiPrefix, d.Metrics, d.Log)
	throttle := middleware.LoginThrottle(d.Throttle, d.Log)

	// --- Pages, guarded by the authorization gate ---
	for _, rule := range domain.Routes() {
		e.GET(rule.Path, pageHandler.Render(rule), with(middleware.Gate(rule, cfg.Session.ResolveWait, d.Metrics))...)
	}

	// --- Auth actions ---
	e.POST(domain.PathLogin, authHandler.Login, with(throttle)...)
	e.POST(domain.PathRegister, authHandler.Register, with(throttle)...)
	e.POST("/logout", authHandler.Logout, with()...)
	e.GET("/auth/google", authHandler.Google)
	e.GET(domain.PathAuthSuccess, authHandler.Success, with()...)

	// --- Session + API proxy ---
	e.GET("/session", sessionHandler.Get, with()...)
	e.Any(apiPrefix+"/*", proxyHandler.Forward, with()...)

	// --- Health probes, metrics, docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis, cfg.API.BaseURL)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
