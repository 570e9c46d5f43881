// apperr.go - Error taxonomy shared by the domain services and the HTTP layer

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by its user-visible outcome.
type Kind string

const (
	KindValidation      Kind = "validation"      // missing or invalid input
	KindUnauthenticated Kind = "unauthenticated" // missing, invalid or expired token
	KindForbidden       Kind = "forbidden"       // resource not owned by the caller
	KindNotFound        Kind = "not_found"       // entity absent
	KindConflict        Kind = "conflict"        // duplicate registration email
	KindUnexpected      Kind = "unexpected"      // store or connectivity failure
)

// Error carries a Kind, a message safe to show to clients, and the original cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks. They match any error of the same kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUnexpected      = &Error{Kind: KindUnexpected}
)

func Validation(msg string) error      { return &Error{Kind: KindValidation, Message: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }

// Unexpected wraps a store or infrastructure failure. The cause is kept for logs only.
func Unexpected(msg string, cause error) error {
	return &Error{Kind: KindUnexpected, Message: msg, Cause: cause}
}

// KindOf returns the Kind of err. Anything that is not an *Error is unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

// Status maps a Kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
