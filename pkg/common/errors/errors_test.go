package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrOwnership", ErrOwnership, "command ownership violation"},
		{"ErrGrouped", ErrGrouped, "command ownership violation: command is owned by a composition"},
		{"ErrAlreadyScheduled", ErrAlreadyScheduled, "command ownership violation: command is already scheduled"},
		{"ErrCompositionRunning", ErrCompositionRunning, "composition is running"},
		{"ErrDoubleEnd", ErrDoubleEnd, "command ended twice"},
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrCapacityExceeded", ErrCapacityExceeded, "capacity exceeded"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsOwnership(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grouped", ErrGrouped, true},
		{"already scheduled", ErrAlreadyScheduled, true},
		{"duplicate child", ErrDuplicateChild, true},
		{"wrapped grouped", fmt.Errorf("sequential: %w", ErrGrouped), true},
		{"running composition", ErrCompositionRunning, false},
		{"validation", NewValidationError("command", "child", nil, "cannot be nil"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnership(tt.err); got != tt.want {
				t.Errorf("IsOwnership() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "robot",
				Field:  "period",
				Value:  -1,
				Reason: "must be positive",
			},
			want: "robot: invalid period=-1 (must be positive)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "workerpool",
				Field:  "workers",
				Value:  0,
				Reason: "must be positive",
				Hint:   "use a value greater than 0",
			},
			want: "workerpool: invalid workers=0 (must be positive) - use a value greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}

	result := verr.WithHint("hint")
	if result != verr {
		t.Error("WithHint should return the same instance")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewOperationError("dashboard", "Publish", cause).WithContext("redis localhost:6379")

	want := "dashboard.Publish failed: connection refused (redis localhost:6379)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap the cause error")
	}
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"capacity exceeded", ErrCapacityExceeded, true},
		{"wrapped capacity", &OperationError{Cause: ErrCapacityExceeded}, true},
		{"closed error", ErrClosed, false},
		{"ownership", ErrGrouped, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTemporary(tt.err); got != tt.want {
				t.Errorf("IsTemporary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := &OperationError{Cause: NewValidationError("config", "loop.period", 0, "must be positive")}
	if !IsValidationError(wrapped) {
		t.Error("wrapped validation error should be detected")
	}
	if IsValidationError(errors.New("plain")) {
		t.Error("plain error is not a validation error")
	}

	msg := NewValidationError("mymodule", "myfield", 42, "must be less than 10").
		WithHint("use a value between 0 and 10").Error()
	for _, part := range []string{"mymodule", "myfield", "42", "must be less than 10", "use a value between 0 and 10"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message should contain %q, got %q", part, msg)
		}
	}
}
