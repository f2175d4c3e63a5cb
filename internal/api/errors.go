package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the token was rejected. The session has already
	// been invalidated by the time callers see this.
	ErrUnauthorized = errors.New("session expired, please log in again")

	// ErrForbidden means the action is not allowed for this role. The
	// session stays valid.
	ErrForbidden = errors.New("not permitted for this account")
)

// Error is a non-2xx response from the backend. Reason carries the
// server-supplied text verbatim when the body was parseable, otherwise a
// status-based fallback.
type Error struct {
	Status int
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// ValidationError is a client-side rejection: the request was never sent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
