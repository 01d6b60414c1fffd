package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the robocmd library

var (
	// ErrOwnership indicates a command was exposed outside the composition that owns it,
	// or scheduled while it was already running.
	ErrOwnership = errors.New("command ownership violation")

	// ErrGrouped indicates a command that belongs to a composition was scheduled
	// independently or added to a second composition.
	ErrGrouped = fmt.Errorf("%w: command is owned by a composition", ErrOwnership)

	// ErrAlreadyScheduled indicates a command was scheduled while already active.
	ErrAlreadyScheduled = fmt.Errorf("%w: command is already scheduled", ErrOwnership)

	// ErrDuplicateChild indicates the same command instance was given to a composition twice.
	ErrDuplicateChild = fmt.Errorf("%w: command appears twice in one composition", ErrOwnership)

	// ErrRequirementConflict indicates two children of a parallel composition
	// require the same subsystem.
	ErrRequirementConflict = errors.New("parallel children share a requirement")

	// ErrCompositionRunning indicates a composition was modified while running
	ErrCompositionRunning = errors.New("composition is running")

	// ErrDoubleEnd indicates End was called on a command that already ended.
	// It is a contract violation, never a runtime condition.
	ErrDoubleEnd = errors.New("command ended twice")

	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrCapacityExceeded indicates that a capacity limit was exceeded
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsOwnership returns true if the error is an ownership violation of any kind
func IsOwnership(err error) bool {
	return errors.Is(err, ErrOwnership)
}

// IsTemporary returns true if the error indicates a condition that may clear
// on a later tick, such as a full work queue.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// ValidationError describes an invalid constructor or configuration argument.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError for the given module and field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OperationError wraps a failure of an I/O operation performed outside the
// control thread, such as a dashboard publish.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches additional detail and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
