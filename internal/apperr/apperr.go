// Package apperr defines the error kinds shared by the billing services.
// Handlers map them to HTTP status codes with errors.As.
package apperr

import "fmt"

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// NotFound builds a NotFoundError for entity.
func NotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// ConflictError reports a uniqueness violation. The caller may retry.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ComputationFallback records that a degraded code path was taken.
// It is logged and counted, never returned to callers.
type ComputationFallback struct {
	Op  string
	Err error
}

func (e *ComputationFallback) Error() string {
	return fmt.Sprintf("%s: fallback used: %v", e.Op, e.Err)
}

func (e *ComputationFallback) Unwrap() error { return e.Err }

// ForbiddenError reports an action on a record the caller does not own.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return "not allowed to " + e.Action
}

// Forbidden builds a ForbiddenError for action.
func Forbidden(action string) *ForbiddenError {
	return &ForbiddenError{Action: action}
}
