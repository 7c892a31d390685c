package domain

// SessionStatus is the tri-state of a browser session.
type SessionStatus uint8

const (
	StatusLoading SessionStatus = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// MarshalText encodes the status by name.
func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SessionState is an immutable snapshot of a session. Identity is non-nil
// exactly when Status is StatusAuthenticated.
type SessionState struct {
	Status   SessionStatus
	Identity *Identity
}

// Loading is the initial state of every session.
func Loading() SessionState {
	return SessionState{Status: StatusLoading}
}

func Unauthenticated() SessionState {
	return SessionState{Status: StatusUnauthenticated}
}

// Authenticated copies identity so later mutation by the caller cannot leak
// into the snapshot.
func Authenticated(identity Identity) SessionState {
	id := identity
	return SessionState{Status: StatusAuthenticated, Identity: &id}
}

func (s SessionState) IsLoading() bool {
	return s.Status == StatusLoading
}

func (s SessionState) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the identity's role, or RoleUnknown when not authenticated.
func (s SessionState) Role() Role {
	if !s.IsAuthenticated() {
		return RoleUnknown
	}
	return s.Identity.Role
}
