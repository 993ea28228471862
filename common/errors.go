// Package common holds the error taxonomy shared by the progression engine,
// the services and the HTTP layer. Handlers use the concrete types to pick a
// status code; everything else is reported as an internal error.
package common

import (
	"errors"
	"fmt"
)

// Auth errors
var (
	// ErrUnauthorized - missing or invalid credentials
	ErrUnauthorized = errors.New("user not authenticated")
	// ErrForbidden - authenticated but lacking privileges
	ErrForbidden = errors.New("access denied")
)

// ValidationError rejects input before any state is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown user, pet, record or companion type.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError reports a request that cannot be applied in the current state,
// such as adopting a companion that is already owned.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
