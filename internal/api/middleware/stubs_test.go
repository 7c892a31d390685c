package middleware

import (
	"context"
	"sync"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

type stubSession struct {
	state   domain.SessionState
	awaited *domain.SessionState
	waits   int
}

func (s *stubSession) State() domain.SessionState { return s.state }

func (s *stubSession) Await(ctx context.Context) domain.SessionState {
	s.waits++
	if s.awaited != nil {
		return *s.awaited
	}
	<-ctx.Done()
	return s.state
}

func (s *stubSession) Login(context.Context, domain.LoginInput) (domain.Identity, error) {
	return domain.Identity{}, nil
}

func (s *stubSession) Register(context.Context, domain.RegisterInput) (domain.Identity, error) {
	return domain.Identity{}, nil
}

func (s *stubSession) Logout(context.Context) {}

func (s *stubSession) AcceptExternalToken(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, nil
}

func (s *stubSession) Client() ports.SessionClient { return nil }

// recordingProvider remembers which ids and navigation targets it was asked
// for.
type recordingProvider struct {
	mu      sync.Mutex
	session ports.SessionService
	ids     []string
	ctxs    []context.Context
}

func (p *recordingProvider) Session(ctx context.Context, id string) ports.SessionService {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	p.ctxs = append(p.ctxs, ctx)
	return p.session
}

func (p *recordingProvider) Forget(string) {}
