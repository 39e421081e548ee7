package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can map it to a transport status and
// decide whether to retry. Business rejections (validation, authorization,
// conflict) are returned values, never panics; KindStorage marks unexpected
// infrastructure failures.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindNotFound      Kind = "NOT_FOUND"
	KindAuthorization Kind = "AUTHORIZATION"
	KindConflict      Kind = "CONFLICT"
	KindStorage       Kind = "STORAGE"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps an unexpected repository failure.
func StorageError(msg string, cause error) error {
	return &Error{Kind: KindStorage, Message: msg, cause: cause}
}

// ErrConcurrentUpdate is returned by repositories when a transaction loses a
// serialization race. The lifecycle service retries the whole operation once
// before surfacing a conflict.
var ErrConcurrentUpdate = &Error{Kind: KindConflict, Message: "concurrent update"}

// KindOf returns the kind of err, or KindStorage for untyped errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
