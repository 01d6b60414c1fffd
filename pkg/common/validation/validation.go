// Package validation provides common validation utilities for the robocmd library.
package validation

import (
	"reflect"
	"slices"
	"strings"
	"time"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return rcerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that a numeric value is non-negative (>= 0).
// Returns a ValidationError if the value is negative.
func ValidateNonNegative(module, field string, value float64) error {
	if value < 0 {
		return rcerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is greater than zero.
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return rcerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("use a duration such as 20ms")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// A typed nil pointer stored in the interface is treated as nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if isNil(value) {
		return rcerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return rcerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// ValidateOneOf validates that value is one of the allowed options.
func ValidateOneOf(module, field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return rcerrors.NewValidationError(module, field, value, "unsupported value").
			WithHint("use one of: " + strings.Join(allowed, ", "))
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
