// Package common defines the error taxonomy shared by the shell layers.
// Callers match sentinels with errors.Is and classify anything else with KindOf.
package common

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors.
	ErrMissingOrigin = errors.New("api origin is not configured")

	// ErrNoSession means boot found no persisted token.
	ErrNoSession = errors.New("no session")

	// Authentication errors, shown inline on the login form.
	ErrLoginFailed        = errors.New("Login failed")
	ErrSessionCheckFailed = errors.New("Login ok but session check failed")

	// Authorization errors: any 401 from the backend.
	ErrUnauthorized = errors.New("Unauthorized")
)

// Kind classifies an error by how the shell recovers from it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig aborts boot.
	KindConfig
	// KindAuthentication is recovered on the login form.
	KindAuthentication
	// KindUnauthorized forces a global logout.
	KindUnauthorized
	// KindTransport means the request never got a response.
	KindTransport
	// KindServer is a non-2xx response other than 401.
	KindServer
	// KindModule is a module failing to mount.
	KindModule
	// KindNoSession means there was nothing to restore at boot.
	KindNoSession
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuthentication:
		return "authentication"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindModule:
		return "module"
	case KindNoSession:
		return "no session"
	default:
		return "unknown"
	}
}

// Error carries a Kind together with the user-facing message.
// Status is the HTTP status for KindServer and KindUnauthorized, zero otherwise.
type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with kind. The message defaults to err's text.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err. Bare sentinels from this package are
// classified as well, so callers never need to inspect message text.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrMissingOrigin):
		return KindConfig
	case errors.Is(err, ErrNoSession):
		return KindNoSession
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrLoginFailed), errors.Is(err, ErrSessionCheckFailed):
		return KindAuthentication
	}
	return KindUnknown
}
