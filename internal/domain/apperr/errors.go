// Package apperr defines the error categories surfaced by the letter
// workflow and mapped to transport status codes at the edge.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrRateLimited      = errors.New("rate limited")
)

// Error carries a user-facing message alongside its category.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) error {
	return newf(ErrValidation, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newf(ErrForbidden, format, args...)
}

func Unauthenticatedf(format string, args ...interface{}) error {
	return newf(ErrUnauthenticated, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}

// Message returns the user-facing text of err. Errors outside the taxonomy
// fall back to fallback so internals are not leaked.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}

// IsStoreDown reports whether err means the backing store cannot be reached
// at the moment (not configured or out of quota).
func IsStoreDown(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrRateLimited)
}
