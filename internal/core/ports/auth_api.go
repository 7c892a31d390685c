package ports

import (
	"context"
	"net/http"

	"github.com/gympulse/gateway/internal/core/domain"
)

// AuthAPI is the upstream authentication surface. Implementations attach the
// session's stored credential to every call.
type AuthAPI interface {
	Login(ctx context.Context, in domain.LoginInput) (domain.AuthResult, error)
	Register(ctx context.Context, in domain.RegisterInput) (domain.AuthResult, error)
	// Me resolves the stored credential into an identity.
	Me(ctx context.Context) (domain.Identity, error)
}

// InvalidationFunc is called when the upstream API rejects a session's
// credential on an unrelated request.
type InvalidationFunc func(ctx context.Context, inv domain.Invalidation)

// SessionClient is the per-session view of the upstream API.
type SessionClient interface {
	AuthAPI
	// Subscribe registers fn for credential invalidations observed on any
	// request made through this client.
	Subscribe(fn InvalidationFunc)
	// Transport is the credential-attaching round tripper, for proxying
	// resource calls.
	Transport() http.RoundTripper
}

// SessionClientFactory builds the upstream client bound to one token slot.
type SessionClientFactory interface {
	NewSessionClient(store TokenStore) SessionClient
}
