package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidNonce    = errors.New("invalid security token")
)

// Error carries a human readable message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func NewPermissionError(reason string) *Error {
	return &Error{Kind: ErrPermission, Message: reason}
}

// UserMessage returns the message safe to show to the caller, or "" when err
// is not a domain error.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty"
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in"
	case errors.Is(err, ErrInvalidNonce):
		return "Security check failed"
	}
	return ""
}
