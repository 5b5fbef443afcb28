// Package apperr holds the error taxonomy shared by services, controllers
// and the client SDK.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an application error.
type Kind string

const (
	KindValidation      Kind = "VALIDATION"
	KindCrossRestaurant Kind = "CROSS_RESTAURANT_CONFLICT"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindRejected        Kind = "BACKEND_REJECTION"
	KindTransient       Kind = "TRANSIENT_NETWORK"
	KindStorage         Kind = "STORAGE"
)

// Error carries a Kind plus a message that is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrCrossRestaurant = &Error{Kind: KindCrossRestaurant}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrRejected        = &Error{Kind: KindRejected}
	ErrTransient       = &Error{Kind: KindTransient}
	ErrStorage         = &Error{Kind: KindStorage}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func CrossRestaurant(cartRestaurant, itemRestaurant uint) error {
	return &Error{
		Kind:    KindCrossRestaurant,
		Message: fmt.Sprintf("cart holds items from restaurant %d, cannot add from restaurant %d", cartRestaurant, itemRestaurant),
	}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Rejected is a structured refusal from the backend. The message is shown
// to the user verbatim.
func Rejected(msg string) error {
	return &Error{Kind: KindRejected, Message: msg}
}

func Transient(err error) error {
	return &Error{Kind: KindTransient, Message: "network request failed", Err: err}
}

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the user-facing message of err, falling back to
// fallback when err is not an *Error or has no message.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
