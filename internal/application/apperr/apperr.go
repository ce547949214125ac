// Package apperr defines the error kinds the application layer reports.
// Presentation adapters map kinds to transport codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrExpired             = errors.New("expired")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrForbidden           = errors.New("forbidden")
)

// Error tags a cause with a kind. Both match errors.Is.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Cause.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: err}
}

// New returns a kind-tagged error with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// NotFound reports a missing resource by name and id.
func NotFound(resource, id string) error {
	return New(ErrNotFound, "%s %q not found", resource, id)
}

// KindOf returns the kind err carries, or nil when it carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrInvalidRequest, ErrExpired, ErrUpstreamUnavailable, ErrForbidden} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
