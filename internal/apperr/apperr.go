package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer
type Kind int

const (
	// KindValidation is a malformed or out-of-range request
	KindValidation Kind = iota
	// KindNotFound is an unknown network, station, track or crossover id
	KindNotFound
	// KindInsufficientBudget is a construction request the network cannot afford
	KindInsufficientBudget
	// KindInternal is a storage or unexpected failure
	KindInternal
)

// Error is the single error type crossing package boundaries. Handlers map
// its Kind to an HTTP status; everything else is message detail.
type Error struct {
	Kind    Kind
	Message string

	// Required and Available are set only for KindInsufficientBudget so the
	// caller can render a precise message.
	Required  int64
	Available int64

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validationf builds a validation error
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientBudget builds a budget error carrying both amounts
func InsufficientBudget(required, available int64) *Error {
	return &Error{
		Kind:      KindInsufficientBudget,
		Message:   "INSUFFICIENT_BUDGET",
		Required:  required,
		Available: available,
	}
}

// Internal wraps an unexpected failure
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// As extracts an *Error from an error chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
