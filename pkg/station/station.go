// Package station models the driver station: the robot's operating mode and
// the disabled signal the scheduler reads every tick. Mode changes can be
// scripted with cron expressions for unattended runs.
package station

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/command"
)

// Mode is the robot's operating mode.
type Mode int32

const (
	Disabled Mode = iota
	Autonomous
	Teleop
	Test
)

var modeNames = []string{"disabled", "autonomous", "teleop", "test"}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	return []Mode{Disabled, Autonomous, Teleop, Test}
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Disabled, rcerrors.NewValidationError("station", "mode", s, "unknown mode").
		WithHint("use one of " + strings.Join(modeNames, ", "))
}

// Entry switches the station to Mode whenever Spec fires.
type Entry struct {
	// Spec is a cron expression with a leading seconds field, or a
	// descriptor such as "@every 15s".
	Spec string
	Mode Mode
}

// Config configures a Station.
type Config struct {
	InitialMode Mode
	Schedule    []Entry

	// Clock drives the schedule. Default: wall clock.
	Clock  command.Clock
	Logger *slog.Logger
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec reports whether spec is a valid schedule expression.
func ValidateSpec(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return rcerrors.NewValidationError("station", "schedule", spec, err.Error())
	}
	return nil
}

type scheduled struct {
	entry    Entry
	schedule cron.Schedule
	next     time.Time
}

// Station holds the current mode. Mode and SetMode are safe to call from any
// goroutine; Update belongs to the control loop.
type Station struct {
	mode  atomic.Int32
	clock command.Clock
	log   *slog.Logger
	plan  []*scheduled
}

// New creates a station. Every schedule entry is parsed up front.
func New(cfg Config) (*Station, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = command.SystemClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.InitialMode.String() == "unknown" {
		return nil, rcerrors.NewValidationError("station", "initial_mode", int(cfg.InitialMode), "unknown mode")
	}

	s := &Station{clock: clock, log: logger.With(slog.String("component", "station"))}
	s.mode.Store(int32(cfg.InitialMode))

	now := clock.Now()
	for i, e := range cfg.Schedule {
		sched, err := parser.Parse(e.Spec)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i,
				rcerrors.NewValidationError("station", "schedule", e.Spec, err.Error()))
		}
		s.plan = append(s.plan, &scheduled{entry: e, schedule: sched, next: sched.Next(now)})
	}
	return s, nil
}

// Mode returns the current mode.
func (s *Station) Mode() Mode {
	return Mode(s.mode.Load())
}

// SetMode changes the mode and reports whether it changed.
func (s *Station) SetMode(m Mode) bool {
	old := Mode(s.mode.Swap(int32(m)))
	if old != m {
		s.log.Info("mode changed", slog.String("from", old.String()), slog.String("to", m.String()))
	}
	return old != m
}

// Disabled reports whether the robot is disabled. It is the scheduler's
// disabled signal.
func (s *Station) Disabled() bool {
	return s.Mode() == Disabled
}

// Enabled reports whether the robot is in any mode but Disabled.
func (s *Station) Enabled() bool {
	return !s.Disabled()
}

// Update applies every scheduled mode change that has come due, oldest
// first, and returns the resulting mode.
func (s *Station) Update() Mode {
	now := s.clock.Now()

	var due []*scheduled
	for _, p := range s.plan {
		if !p.next.IsZero() && !p.next.After(now) {
			due = append(due, p)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].next.Before(due[j].next) })

	for _, p := range due {
		s.log.Debug("scheduled mode change", slog.String("spec", p.entry.Spec), slog.String("mode", p.entry.Mode.String()))
		s.SetMode(p.entry.Mode)
		p.next = p.schedule.Next(now)
	}
	return s.Mode()
}

// Next returns the time of the next scheduled mode change.
func (s *Station) Next() (time.Time, bool) {
	var next time.Time
	for _, p := range s.plan {
		if p.next.IsZero() {
			continue
		}
		if next.IsZero() || p.next.Before(next) {
			next = p.next
		}
	}
	return next, !next.IsZero()
}
