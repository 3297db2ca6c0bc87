// Package apperr defines the error taxonomy shared by the services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

const (
	KindInternal           Kind = "INTERNAL"
	KindValidation         Kind = "VALIDATION"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindUnavailable        Kind = "UNAVAILABLE"
)

// E is an error with a Kind and a caller-facing message.
type E struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Cause }

// New returns an error of the given kind.
func New(kind Kind, message string) error {
	return &E{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that keeps cause in the chain.
func Wrap(kind Kind, message string, cause error) error {
	return &E{Kind: kind, Message: message, Cause: cause}
}

func Validation(msg string) error         { return New(KindValidation, msg) }
func Unauthenticated(msg string) error    { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) error          { return New(KindForbidden, msg) }
func NotFound(msg string) error           { return New(KindNotFound, msg) }
func Conflict(msg string) error           { return New(KindConflict, msg) }
func PreconditionFailed(msg string) error { return New(KindPreconditionFailed, msg) }

// Unavailable wraps a downstream failure (timeout, refused, bad status).
func Unavailable(msg string, cause error) error {
	return Wrap(KindUnavailable, msg, cause)
}

// KindOf returns the Kind of the first *E in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *E
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps a Kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindPreconditionFailed:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
