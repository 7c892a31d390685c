package apiclient

import (
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

const reasonUnauthorized = "unauthorized"

// Transport attaches a session's credential to outbound API requests and turns
// a 401 into an invalidation signal. It never navigates and never alters the
// response.
type Transport struct {
	base  http.RoundTripper
	store ports.TokenStore
	log   zerolog.Logger

	mu          sync.RWMutex
	subscribers []ports.InvalidationFunc
}

var _ http.RoundTripper = (*Transport)(nil)

func NewTransport(base http.RoundTripper, store ports.TokenStore, log zerolog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, store: store, log: log}
}

// Subscribe registers fn for invalidations.
func (t *Transport) Subscribe(fn ports.InvalidationFunc) {
	t.mu.Lock()
	t.subscribers = append(t.subscribers, fn)
	t.mu.Unlock()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	token, attached := t.store.Get(ctx)
	if attached && token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		attached = false
		out.Header.Del("Authorization")
	}
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(req.URL.Path) {
		if !attached {
			token = ""
		}
		t.invalidate(req, token)
	}
	return resp, nil
}

// invalidate clears the slot when it still holds the rejected credential and
// signals the session. rejected is empty when the request went out without a
// credential; an empty slot is still signalled so that an identity never
// outlives its credential. A newer credential written meanwhile is left alone
// and no signal is raised.
func (t *Transport) invalidate(req *http.Request, rejected string) {
	ctx := req.Context()
	current, ok := t.store.Get(ctx)
	if ok && current != "" && current != rejected {
		return
	}
	if ok {
		if err := t.store.Clear(ctx); err != nil {
			t.log.Warn().Err(err).Msg("clear rejected credential")
		}
	}

	inv := domain.Invalidation{
		Reason:   reasonUnauthorized,
		Path:     req.URL.Path,
		Navigate: !IsAuthScreen(NavigationFrom(ctx)),
	}
	if rec := recorderFrom(ctx); rec != nil {
		rec.record(inv)
	}

	t.mu.RLock()
	subs := append([]ports.InvalidationFunc(nil), t.subscribers...)
	t.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, inv)
	}
}

// isAuthEndpoint matches the credential-issuing endpoints, whose 401 means
// rejected input rather than an invalid session.
func isAuthEndpoint(path string) bool {
	path = strings.TrimSuffix(path, "/")
	return strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/register")
}
