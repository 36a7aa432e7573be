// Package apperrors defines the error taxonomy surfaced by the shift
// lifecycle. Handlers map each sentinel to an HTTP status; everything
// not wrapped in one of these is treated as internal.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrTimeout    = errors.New("timeout")
	ErrInternal   = errors.New("internal error")
)

// Validation wraps ErrValidation with a field-specific message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound naming the missing resource.
func NotFound(resource string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, resource, id)
}

// Conflict wraps ErrConflict with a caller-facing message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Timeout wraps ErrTimeout for operations that exceeded their budget.
func Timeout(operation string) error {
	return fmt.Errorf("%w: %s exceeded its time budget", ErrTimeout, operation)
}

// Internal wraps an unexpected failure, preserving the cause for logs
// while keeping the sentinel matchable with errors.Is.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsTimeout(err error) bool    { return errors.Is(err, ErrTimeout) }
