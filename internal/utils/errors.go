package utils

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindConflict     ErrorKind = "conflict"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindInvalidState ErrorKind = "invalid_state"
	ErrorKindExternalIO   ErrorKind = "external_io"
	ErrorKindInternal     ErrorKind = "internal"
)

// AppError is the typed failure every domain operation returns. Business rule
// violations are values, not panics; handlers map Kind to an HTTP status.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

func ConflictError(message string) *AppError {
	return &AppError{Kind: ErrorKindConflict, Message: message}
}

func UnauthorizedError(message string) *AppError {
	return &AppError{Kind: ErrorKindUnauthorized, Message: message}
}

func InvalidStateError(message string) *AppError {
	return &AppError{Kind: ErrorKindInvalidState, Message: message}
}

func ExternalIOError(message string, err error) *AppError {
	return &AppError{Kind: ErrorKindExternalIO, Message: message, Err: err}
}

func InternalError(message string, err error) *AppError {
	return &AppError{Kind: ErrorKindInternal, Message: message, Err: err}
}

// KindOf extracts the error kind from err's chain, defaulting to internal for
// untyped errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrorKindInternal
}

func IsNotFound(err error) bool     { return KindOf(err) == ErrorKindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == ErrorKindConflict }
func IsUnauthorized(err error) bool { return KindOf(err) == ErrorKindUnauthorized }
func IsInvalidState(err error) bool { return KindOf(err) == ErrorKindInvalidState }
func IsExternalIO(err error) bool   { return KindOf(err) == ErrorKindExternalIO }
