package validation

import (
	"testing"
	"time"

	"github.com/vnykmshr/robocmd/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"positive value", 10, false},
		{"positive value 1", 1, false},
		{"zero value", 0, true},
		{"negative value", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "count", tt.value)

			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("test", "rate", 0); err != nil {
		t.Errorf("zero should be valid, got %v", err)
	}
	if err := ValidateNonNegative("test", "rate", -0.5); err == nil {
		t.Error("negative value should be rejected")
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	tests := []struct {
		name      string
		value     time.Duration
		wantError bool
	}{
		{"20ms", 20 * time.Millisecond, false},
		{"zero", 0, true},
		{"negative", -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveDuration("robot", "period", tt.value)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePositiveDuration(%v) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}
}

type widget struct{}

func TestValidateNotNil(t *testing.T) {
	var typedNil *widget
	var fn func()

	tests := []struct {
		name      string
		value     interface{}
		wantError bool
	}{
		{"nil interface", nil, true},
		{"typed nil pointer", typedNil, true},
		{"nil func", fn, true},
		{"valid pointer", &widget{}, false},
		{"valid value", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotNil("command", "child", tt.value)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateNotNil() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("dashboard", "key_prefix", ""); err == nil {
		t.Error("empty string should be rejected")
	}
	if err := ValidateNotEmpty("dashboard", "key_prefix", "robocmd"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateOneOf(t *testing.T) {
	if err := ValidateOneOf("logging", "format", "json", "json", "text"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateOneOf("logging", "format", "xml", "json", "text")
	if err == nil {
		t.Fatal("expected error for unsupported value")
	}
	if !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
