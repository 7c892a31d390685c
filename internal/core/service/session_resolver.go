package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

// StateListener is notified after every state change.
type StateListener func(prev, next domain.SessionState)

// ResolverOption configures a SessionResolver.
type ResolverOption func(*SessionResolver)

func WithLogger(log zerolog.Logger) ResolverOption {
	return func(r *SessionResolver) { r.log = log }
}

func WithActivitySink(sink ports.ActivitySink) ResolverOption {
	return func(r *SessionResolver) {
		if sink != nil {
			r.sink = sink
		}
	}
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *SessionResolver) {
		if now != nil {
			r.now = now
		}
	}
}

func WithStateListener(fn StateListener) ResolverOption {
	return func(r *SessionResolver) {
		if fn != nil {
			r.listeners = append(r.listeners, fn)
		}
	}
}

// SessionResolver owns the loading/unauthenticated/authenticated lifecycle of
// one browser session and performs the auth actions that move it.
//
// Explicit actions (login, register, logout, external token) always win over
// an initial resolution that settles after them. Overlapping explicit actions
// are not deduplicated: the last one to settle determines the state.
type SessionResolver struct {
	key    string
	store  ports.TokenStore
	client ports.SessionClient
	sink   ports.ActivitySink
	log    zerolog.Logger
	now    func() time.Time

	startOnce sync.Once
	settled   chan struct{}
	settle    sync.Once

	mu        sync.RWMutex
	state     domain.SessionState
	gen       uint64
	listeners []StateListener
}

var _ ports.SessionService = (*SessionResolver)(nil)

// NewSessionResolver builds a resolver in the loading state. key identifies
// the session in logs and activity events; it must not be the raw cookie.
// The resolver subscribes to the client's invalidation signal.
func NewSessionResolver(key string, store ports.TokenStore, client ports.SessionClient, opts ...ResolverOption) *SessionResolver {
	r := &SessionResolver{
		key:     key,
		store:   store,
		client:  client,
		sink:    nopSink{},
		log:     zerolog.Nop(),
		now:     time.Now,
		settled: make(chan struct{}),
		state:   domain.Loading(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("session", key).Logger()
	client.Subscribe(r.invalidate)
	return r
}

// Start launches the initial resolution. Only the first call has any effect.
func (r *SessionResolver) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.mu.RLock()
		gen := r.gen
		r.mu.RUnlock()
		go r.resolve(context.WithoutCancel(ctx), gen)
	})
}

func (r *SessionResolver) State() domain.SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *SessionResolver) Await(ctx context.Context) domain.SessionState {
	select {
	case <-r.settled:
	case <-ctx.Done():
	}
	return r.State()
}

func (r *SessionResolver) Client() ports.SessionClient {
	return r.client
}

func (r *SessionResolver) resolve(ctx context.Context, gen uint64) {
	token, ok := r.store.Get(ctx)
	if !ok || token == "" {
		r.transitionIf(ctx, gen, domain.Unauthenticated(), domain.EventResolved, "no credential")
		return
	}
	if credentialExpired(token, r.now()) {
		r.failResolution(ctx, gen, "credential expired")
		return
	}
	identity, err := r.client.Me(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("session resolution failed")
		r.failResolution(ctx, gen, reasonFor(err))
		return
	}
	r.transitionIf(ctx, gen, domain.Authenticated(identity), domain.EventResolved, "")
}

func (r *SessionResolver) failResolution(ctx context.Context, gen uint64, reason string) {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return
	}
	if err := r.store.Clear(ctx); err != nil {
		r.log.Warn().Err(err).Msg("clear credential after failed resolution")
	}
	prev := r.swapLocked(domain.Unauthenticated())
	r.mu.Unlock()
	r.after(ctx, prev, domain.Unauthenticated(), domain.EventResolveFailed, reason)
}

func (r *SessionResolver) Login(ctx context.Context, in domain.LoginInput) (domain.Identity, error) {
	res, err := r.client.Login(ctx, in)
	if err != nil {
		r.record(ctx, r.State(), r.State(), domain.EventLoginFailed, domain.UserMessage(err, domain.OpLogin))
		return domain.Identity{}, err
	}
	if err := r.establish(ctx, res, domain.EventLogin); err != nil {
		return domain.Identity{}, domain.NewAuthError(domain.OpLogin, 0, "", err)
	}
	return res.Identity, nil
}

func (r *SessionResolver) Register(ctx context.Context, in domain.RegisterInput) (domain.Identity, error) {
	res, err := r.client.Register(ctx, in)
	if err != nil {
		r.record(ctx, r.State(), r.State(), domain.EventRegisterFailed, domain.UserMessage(err, domain.OpRegister))
		return domain.Identity{}, err
	}
	if err := r.establish(ctx, res, domain.EventRegister); err != nil {
		return domain.Identity{}, domain.NewAuthError(domain.OpRegister, 0, "", err)
	}
	return res.Identity, nil
}

// establish stores the credential and then authenticates the session. When
// the credential cannot be stored the state is left untouched.
func (r *SessionResolver) establish(ctx context.Context, res domain.AuthResult, event domain.SessionEventType) error {
	if res.Token == "" {
		return domain.ErrMissingToken
	}
	next := domain.Authenticated(res.Identity)

	r.mu.Lock()
	if err := r.store.Set(ctx, res.Token); err != nil {
		r.mu.Unlock()
		r.log.Error().Err(err).Msg("store credential")
		return fmt.Errorf("store credential: %w", err)
	}
	r.gen++
	prev := r.swapLocked(next)
	r.mu.Unlock()

	r.after(ctx, prev, next, event, "")
	return nil
}

// Logout always succeeds locally. A storage failure is logged only.
func (r *SessionResolver) Logout(ctx context.Context) {
	next := domain.Unauthenticated()

	r.mu.Lock()
	if err := r.store.Clear(ctx); err != nil {
		r.log.Warn().Err(err).Msg("clear credential on logout")
	}
	r.gen++
	prev := r.swapLocked(next)
	r.mu.Unlock()

	r.after(ctx, prev, next, domain.EventLogout, "")
}

// AcceptExternalToken completes an external login: the token is stored and
// immediately resolved into an identity. On failure the slot is cleared and
// the session is unauthenticated.
func (r *SessionResolver) AcceptExternalToken(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}
	r.mu.Lock()
	r.gen++
	gen := r.gen
	err := r.store.Set(ctx, token)
	r.mu.Unlock()
	if err != nil {
		r.log.Error().Err(err).Msg("store external credential")
		return domain.Identity{}, domain.NewAuthError(domain.OpMe, 0, "", fmt.Errorf("store credential: %w", err))
	}

	var identity domain.Identity
	if credentialExpired(token, r.now()) {
		err = domain.NewAuthError(domain.OpMe, 0, "", domain.ErrCredentialInvalid)
	} else {
		identity, err = r.client.Me(ctx)
	}
	if err != nil {
		r.mu.Lock()
		if r.gen != gen {
			r.mu.Unlock()
			return domain.Identity{}, err
		}
		if clearErr := r.store.Clear(ctx); clearErr != nil {
			r.log.Warn().Err(clearErr).Msg("clear rejected external credential")
		}
		prev := r.swapLocked(domain.Unauthenticated())
		r.mu.Unlock()
		r.after(ctx, prev, domain.Unauthenticated(), domain.EventResolveFailed, reasonFor(err))
		return domain.Identity{}, err
	}

	if !r.transitionIf(ctx, gen, domain.Authenticated(identity), domain.EventExternalToken, "") {
		return domain.Identity{}, domain.NewAuthError(domain.OpMe, 0, "", errors.New("superseded by a newer session change"))
	}
	return identity, nil
}

// invalidate reacts to the adapter's signal. Only an authenticated session
// moves; a session still loading settles through its own resolution.
func (r *SessionResolver) invalidate(ctx context.Context, inv domain.Invalidation) {
	r.mu.Lock()
	if !r.state.IsAuthenticated() {
		r.mu.Unlock()
		return
	}
	r.gen++
	prev := r.swapLocked(domain.Unauthenticated())
	r.mu.Unlock()

	r.log.Info().Str("path", inv.Path).Str("reason", inv.Reason).Msg("session invalidated")
	r.after(ctx, prev, domain.Unauthenticated(), domain.EventInvalidated, inv.Reason)
}

// transitionIf applies next only if no other transition happened since gen
// was observed.
func (r *SessionResolver) transitionIf(ctx context.Context, gen uint64, next domain.SessionState, event domain.SessionEventType, reason string) bool {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return false
	}
	prev := r.swapLocked(next)
	r.mu.Unlock()
	r.after(ctx, prev, next, event, reason)
	return true
}

// swapLocked must be called with mu held.
func (r *SessionResolver) swapLocked(next domain.SessionState) domain.SessionState {
	prev := r.state
	r.state = next
	if !next.IsLoading() {
		r.settle.Do(func() { close(r.settled) })
	}
	return prev
}

func (r *SessionResolver) after(ctx context.Context, prev, next domain.SessionState, event domain.SessionEventType, reason string) {
	for _, fn := range r.listeners {
		fn(prev, next)
	}
	r.record(ctx, prev, next, event, reason)
}

func (r *SessionResolver) record(ctx context.Context, prev, next domain.SessionState, event domain.SessionEventType, reason string) {
	ev := domain.SessionEvent{
		Type:       event,
		SessionKey: r.key,
		From:       prev.Status,
		To:         next.Status,
		Reason:     reason,
		OccurredAt: r.now().UTC(),
	}
	if next.IsAuthenticated() {
		ev.UserID = next.Identity.ID
		ev.Role = next.Identity.Role
	} else if prev.IsAuthenticated() {
		ev.UserID = prev.Identity.ID
		ev.Role = prev.Identity.Role
	}
	if err := r.sink.Record(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("event", string(event)).Msg("record session event")
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrTransport):
		return "transport failure"
	case errors.Is(err, domain.ErrCredentialInvalid):
		return "credential rejected"
	default:
		return domain.UserMessage(err, domain.OpMe)
	}
}

type nopSink struct{}

func (nopSink) Record(context.Context, domain.SessionEvent) error { return nil }
