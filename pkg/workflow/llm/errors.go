package llm

import (
	"errors"
	"fmt"
)

// Error wraps a failure from a model call.
type Error struct {
	Op        string // operation that failed, e.g. "complete"
	Err       error  // underlying cause
	Retryable bool   // true for transient failures (rate limits, 5xx)
}

// NewError creates an Error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient model failure.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
