package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "validation_error"
	KindAuthentication ErrorKind = "authentication_error"
	KindAuthorization  ErrorKind = "authorization_error"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInternal       ErrorKind = "internal_error"
)

// Error is what usecases return to handlers. Field names the offending
// input when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	// internal cause, logged but never sent to clients
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NewAuthenticationError(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflictError(field, message string) error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// NewInternalError keeps cause for the log; clients see "internal error".
func NewInternalError(cause error) error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: cause}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) ErrorKind {
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}
