package ports

import "context"

// TokenStore is a persisted slot holding one bearer credential. It performs
// no validation of the credential.
type TokenStore interface {
	// Get returns the stored credential. Storage failures are reported as
	// absent.
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// TokenSlots hands out the TokenStore bound to one browser session.
type TokenSlots interface {
	Slot(sessionID string) TokenStore
}
