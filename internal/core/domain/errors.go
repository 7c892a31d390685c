package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialInvalid marks a credential the API refused (missing,
	// expired, malformed).
	ErrCredentialInvalid = errors.New("credential invalid")
	// ErrRejected marks a login or registration the API refused.
	ErrRejected = errors.New("authentication rejected")
	// ErrTransport marks a request that never got an HTTP response.
	ErrTransport = errors.New("transport failure")
	// ErrMissingToken is returned when an external callback carries no token.
	ErrMissingToken = errors.New("missing token")
	// ErrSessionNotFound is returned when no session is bound to a request.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManyAttempts is returned by the login throttle.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Auth operations, also used as the default user-facing messages.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpMe       = "me"
)

var defaultMessages = map[string]string{
	OpLogin:    "Login failed",
	OpRegister: "Registration failed",
	OpMe:       "Session lookup failed",
}

// AuthError describes a failed call to an auth endpoint. Message is safe to
// show to the user.
type AuthError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

// NewAuthError builds an AuthError, falling back to the operation's default
// message when the server supplied none.
func NewAuthError(op string, status int, message string, err error) *AuthError {
	if message == "" {
		message = DefaultMessage(op)
	}
	return &AuthError{Op: op, Status: status, Message: message, Err: err}
}

func (e *AuthError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// DefaultMessage returns the generic failure message for op.
func DefaultMessage(op string) string {
	if msg, ok := defaultMessages[op]; ok {
		return msg
	}
	return "Request failed"
}

// UserMessage extracts a displayable message from err.
func UserMessage(err error, op string) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		if errors.Is(ae, ErrTransport) {
			return DefaultMessage(op)
		}
		return ae.Message
	}
	return DefaultMessage(op)
}
