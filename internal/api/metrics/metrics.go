// Package metrics defines the gateway's custom Prometheus metrics. It is the
// single source of truth for metric names, labels, and help strings.
//
// Metrics are registered on the registerer passed to New so each router (and
// each test) can own its registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gympulse/gateway/internal/core/domain"
)

const namespace = "gympulse_gateway"

// Metrics holds the gateway collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	reg prometheus.Registerer

	// GateDecisionsTotal counts authorization gate verdicts.
	// Labels:
	//   - page: the page the rule guards (e.g. "pt_dashboard")
	//   - outcome: "allow", "wait", "redirect_login" or "redirect_home"
	GateDecisionsTotal *prometheus.CounterVec

	// SessionTransitionsTotal counts session status changes.
	// Labels:
	//   - from, to: "loading", "unauthenticated" or "authenticated"
	SessionTransitionsTotal *prometheus.CounterVec

	// AuthAttemptsTotal counts explicit auth actions.
	// Labels:
	//   - op: "login", "register" or "external"
	//   - result: "success" or "failure"
	AuthAttemptsTotal *prometheus.CounterVec

	// ProxyRequestsTotal counts proxied API calls by upstream status class.
	// Label:
	//   - code: "2xx", "3xx", "4xx", "5xx" or "error"
	ProxyRequestsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		GateDecisionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_decisions_total",
				Help:      "Total number of authorization gate decisions, by page and outcome.",
			},
			[]string{"page", "outcome"},
		),
		SessionTransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Total number of session status transitions.",
			},
			[]string{"from", "to"},
		),
		AuthAttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of login, registration and external-token attempts.",
			},
			[]string{"op", "result"},
		),
		ProxyRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proxy_requests_total",
				Help:      "Total number of API calls proxied upstream, by status class.",
			},
			[]string{"code"},
		),
	}
}

// ObserveSessions exports the number of live browser sessions.
func (m *Metrics) ObserveSessions(count func() int) {
	if m == nil {
		return
	}
	promauto.With(m.reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Current number of browser sessions held in memory.",
		},
		func() float64 { return float64(count()) },
	)
}

func (m *Metrics) GateDecision(page string, outcome domain.Outcome) {
	if m == nil {
		return
	}
	m.GateDecisionsTotal.WithLabelValues(page, outcome.String()).Inc()
}

func (m *Metrics) SessionTransition(from, to domain.SessionStatus) {
	if m == nil {
		return
	}
	m.SessionTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) AuthAttempt(op string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.AuthAttemptsTotal.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ProxyResponse(status int, err error) {
	if m == nil {
		return
	}
	code := "error"
	switch {
	case err != nil:
	case status >= 500:
		code = "5xx"
	case status >= 400:
		code = "4xx"
	case status >= 300:
		code = "3xx"
	default:
		code = "2xx"
	}
	m.ProxyRequestsTotal.WithLabelValues(code).Inc()
}
