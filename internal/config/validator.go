package config

import (
	"errors"
	"fmt"
	"strings"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/common/validation"
	"github.com/vnykmshr/robocmd/pkg/logging"
	"github.com/vnykmshr/robocmd/pkg/station"
)

// ValidationErrors is a collection of validation errors
type ValidationErrors []*rcerrors.ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes each error to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// Validate checks the Config for invalid values and returns all validation
// errors found. It returns nil when the configuration is valid.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, c.validateLoop()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateMetrics()...)
	errs = append(errs, c.validateDashboard()...)
	errs = append(errs, c.validateStation()...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func invalid(field string, value any, reason string) *rcerrors.ValidationError {
	return rcerrors.NewValidationError("config", field, value, reason)
}

// add appends err to errs when it is a validation error.
func (e *ValidationErrors) add(err error) {
	var ve *rcerrors.ValidationError
	if errors.As(err, &ve) {
		*e = append(*e, ve)
	}
}

func (c *Config) validateLoop() ValidationErrors {
	var errs ValidationErrors
	errs.add(validation.ValidateNotEmpty("config", "loop.name", c.Loop.Name))
	errs.add(validation.ValidatePositive("config", "loop.period_ms", c.Loop.PeriodMs))
	errs.add(validation.ValidateNonNegative("config", "loop.overrun_warnings_per_sec", c.Loop.OverrunWarningsPerSec))
	return errs
}

func (c *Config) validateLogging() ValidationErrors {
	lc := logging.Config{Level: c.Logging.Level, Format: c.Logging.Format}
	if err := lc.Validate(); err != nil {
		var ve *rcerrors.ValidationError
		if errors.As(err, &ve) {
			ve.Field = "logging." + ve.Field
			ve.Module = "config"
			return ValidationErrors{ve}
		}
	}
	var errs ValidationErrors
	errs.add(validation.ValidateNonNegative("config", "logging.max_size_mb", float64(c.Logging.MaxSizeMB)))
	return errs
}

func (c *Config) validateMetrics() ValidationErrors {
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return ValidationErrors{invalid("metrics.addr", c.Metrics.Addr, "required when metrics are enabled").
			WithHint("e.g. :9090")}
	}
	return nil
}

func (c *Config) validateDashboard() ValidationErrors {
	d := c.Dashboard
	if !d.Enabled {
		return nil
	}
	var errs ValidationErrors
	errs.add(validation.ValidatePositive("config", "dashboard.publish_every_ticks", d.PublishEveryTicks))
	errs.add(validation.ValidatePositive("config", "dashboard.workers", d.Workers))
	errs.add(validation.ValidatePositive("config", "dashboard.queue_size", d.QueueSize))
	errs.add(validation.ValidateNotEmpty("config", "dashboard.key_prefix", d.KeyPrefix))
	return errs
}

func (c *Config) validateStation() ValidationErrors {
	var errs ValidationErrors
	if _, err := station.ParseMode(c.Station.InitialMode); err != nil {
		errs = append(errs, invalid("station.initial_mode", c.Station.InitialMode, "unknown mode"))
	}
	for i, e := range c.Station.Schedule {
		field := fmt.Sprintf("station.schedule[%d]", i)
		if err := station.ValidateSpec(e.Spec); err != nil {
			errs = append(errs, invalid(field+".spec", e.Spec, "invalid cron expression"))
		}
		if _, err := station.ParseMode(e.Mode); err != nil {
			errs = append(errs, invalid(field+".mode", e.Mode, "unknown mode"))
		}
	}
	return errs
}

// StationSchedule converts the configured schedule to station entries.
// It assumes Validate has passed.
func (c *Config) StationSchedule() []station.Entry {
	entries := make([]station.Entry, 0, len(c.Station.Schedule))
	for _, e := range c.Station.Schedule {
		mode, _ := station.ParseMode(e.Mode)
		entries = append(entries, station.Entry{Spec: e.Spec, Mode: mode})
	}
	return entries
}
