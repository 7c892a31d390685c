package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/api/metrics"
	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/infrastructure/apiclient"
)

// HeaderSessionRedirect tells the browser where to go after the gateway
// invalidated its session during a proxied call.
const HeaderSessionRedirect = "X-Session-Redirect"

// ProxyHandler forwards resource calls to the REST API through the session's
// credential-attaching transport.
type ProxyHandler struct {
	target  *url.URL
	prefix  string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewProxyHandler proxies requests under prefix to target.
func NewProxyHandler(target *url.URL, prefix string, m *metrics.Metrics, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{target: target, prefix: strings.TrimSuffix(prefix, "/"), metrics: m, log: log}
}

// Forward proxies one call.
//
// @Summary      Proxy to the REST API
// @Tags         api
// @Param        path  path  string  true  "Resource path"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /api/{path} [get]
func (h *ProxyHandler) Forward(c echo.Context) error {
	session, err := boundSession(c)
	if err != nil {
		return err
	}

	ctx, rec := apiclient.WithRecorder(c.Request().Context())
	req := c.Request().WithContext(ctx)

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, h.prefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(h.target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
		},
		Transport: session.Client().Transport(),
		ModifyResponse: func(resp *http.Response) error {
			h.metrics.ProxyResponse(resp.StatusCode, nil)
			if inv, ok := rec.Invalidated(); ok && inv.Navigate {
				resp.Header.Set(HeaderSessionRedirect, domain.PathLogin)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			h.metrics.ProxyResponse(0, err)
			h.log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream unavailable")
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
		},
	}
	proxy.ServeHTTP(c.Response(), req)
	return nil
}
