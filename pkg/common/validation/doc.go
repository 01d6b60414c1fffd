// Package validation provides common validation utilities for configuration
// parameters across the robocmd library.
//
// The helpers return *errors.ValidationError values so constructors and the
// config loader report bad input with the same module/field/hint shape.
package validation
