package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

type stubStore struct {
	mu       sync.Mutex
	token    string
	present  bool
	setErr   error
	getCalls int
}

func (s *stubStore) Get(_ context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return s.token, s.present
}

func (s *stubStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.token, s.present = token, true
	return nil
}

func (s *stubStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.present = "", false
	return nil
}

func (s *stubStore) snapshot() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.present
}

type stubClient struct {
	mu          sync.Mutex
	loginFn     func(ctx context.Context, in domain.LoginInput) (domain.AuthResult, error)
	registerFn  func(ctx context.Context, in domain.RegisterInput) (domain.AuthResult, error)
	meFn        func(ctx context.Context) (domain.Identity, error)
	meCalls     int
	subscribers []ports.InvalidationFunc
}

func (c *stubClient) Login(ctx context.Context, in domain.LoginInput) (domain.AuthResult, error) {
	if c.loginFn == nil {
		return domain.AuthResult{}, errors.New("login not stubbed")
	}
	return c.loginFn(ctx, in)
}

func (c *stubClient) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthResult, error) {
	if c.registerFn == nil {
		return domain.AuthResult{}, errors.New("register not stubbed")
	}
	return c.registerFn(ctx, in)
}

func (c *stubClient) Me(ctx context.Context) (domain.Identity, error) {
	c.mu.Lock()
	c.meCalls++
	fn := c.meFn
	c.mu.Unlock()
	if fn == nil {
		return domain.Identity{}, errors.New("me not stubbed")
	}
	return fn(ctx)
}

func (c *stubClient) Subscribe(fn ports.InvalidationFunc) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *stubClient) Transport() http.RoundTripper { return http.DefaultTransport }

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meCalls
}

// fire simulates the adapter seeing a 401 on an unrelated request.
func (c *stubClient) fire(ctx context.Context, store *stubStore, inv domain.Invalidation) {
	_ = store.Clear(ctx)
	c.mu.Lock()
	subs := append([]ports.InvalidationFunc(nil), c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(ctx, inv)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, ev domain.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) types() []domain.SessionEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionEventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}
