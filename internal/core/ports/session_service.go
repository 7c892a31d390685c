package ports

import (
	"context"

	"github.com/gympulse/gateway/internal/core/domain"
)

// SessionService is the per-browser session: state machine plus auth actions.
type SessionService interface {
	State() domain.SessionState
	// Await blocks until the session leaves the loading state or ctx ends.
	Await(ctx context.Context) domain.SessionState
	Login(ctx context.Context, in domain.LoginInput) (domain.Identity, error)
	Register(ctx context.Context, in domain.RegisterInput) (domain.Identity, error)
	Logout(ctx context.Context)
	AcceptExternalToken(ctx context.Context, token string) (domain.Identity, error)
	// Client is the upstream API client bound to this session.
	Client() SessionClient
}

// SessionProvider binds browser session ids to sessions.
type SessionProvider interface {
	// Session returns the session for id, creating and starting it on first
	// use.
	Session(ctx context.Context, id string) SessionService
	Forget(id string)
}
