package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for API clients
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	KindInternal
)

// Error carries a Kind and a message that is safe to show to clients
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewValidationError(message string) *Error {
	return newError(KindValidation, message)
}

func NewValidationErrorf(format string, args ...interface{}) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

func NewNotFoundError(message string) *Error {
	return newError(KindNotFound, message)
}

func NewConflictError(message string) *Error {
	return newError(KindConflict, message)
}

func NewServiceUnavailableError(message string) *Error {
	return newError(KindUnavailable, message)
}

func NewInternalError(message string) *Error {
	return newError(KindInternal, message)
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
