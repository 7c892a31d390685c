package domain

import "time"

// SessionEventType names a session lifecycle transition.
type SessionEventType string

const (
	EventResolved       SessionEventType = "session.resolved"
	EventResolveFailed  SessionEventType = "session.resolve_failed"
	EventLogin          SessionEventType = "session.login"
	EventLoginFailed    SessionEventType = "session.login_failed"
	EventRegister       SessionEventType = "session.register"
	EventRegisterFailed SessionEventType = "session.register_failed"
	EventLogout         SessionEventType = "session.logout"
	EventInvalidated    SessionEventType = "session.invalidated"
	EventExternalToken  SessionEventType = "session.external_token"
)

// SessionEvent is an audit record of one session transition.
type SessionEvent struct {
	Type       SessionEventType
	SessionKey string
	UserID     UserID
	Role       Role
	From       SessionStatus
	To         SessionStatus
	Reason     string
	OccurredAt time.Time
}

// Invalidation is the signal emitted when the API rejects a stored credential.
// Navigate is false when the browser is already on an auth screen.
type Invalidation struct {
	Reason   string
	Path     string
	Navigate bool
}
