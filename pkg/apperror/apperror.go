// Package apperror defines error kinds shared across bounded contexts
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error and decides the HTTP status exposed to clients
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is an application error with a kind
type Error struct {
	kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Kind returns the error kind
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error of the given kind
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports invalid input
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// NotFound reports a missing resource
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Conflict reports a clash with current state
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Internal wraps an infrastructure error; Message is what clients see
func Internal(cause error, message string) *Error {
	return &Error{kind: KindInternal, Message: message, Cause: cause}
}

// kinded is implemented by domain errors that carry a kind without depending on Error
type kinded interface {
	Kind() Kind
}

// KindOf walks the error chain for a kind, defaulting to internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// Is reports whether err carries kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the text safe to send to clients.
// Internal errors expose only Message, never the cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.kind == KindInternal {
		return e.Message
	}
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	return err.Error()
}
