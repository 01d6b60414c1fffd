package command

import (
	"fmt"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// Subsystem is an exclusive resource token such as a drivetrain or an arm.
// At most one active command owns a subsystem at any tick boundary.
type Subsystem struct {
	name           string
	defaultCommand Command
	periodic       func()
}

// NewSubsystem creates a subsystem with the given name.
func NewSubsystem(name string) *Subsystem {
	return &Subsystem{name: name}
}

// Name returns the subsystem name.
func (s *Subsystem) Name() string {
	return s.name
}

// String implements fmt.Stringer.
func (s *Subsystem) String() string {
	return s.name
}

// SetDefaultCommand sets the command the scheduler starts whenever no other
// command owns s. The subsystem does not own the command; the caller does.
// Passing nil removes the default command.
func (s *Subsystem) SetDefaultCommand(cmd Command) error {
	if cmd == nil {
		s.defaultCommand = nil
		return nil
	}
	if cmd.Grouped() {
		return fmt.Errorf("subsystem %s: default command %s: %w", s.name, cmd.Name(), rcerrors.ErrGrouped)
	}
	if !cmd.base().requires(s) {
		return rcerrors.NewValidationError("subsystem", "default_command", cmd.Name(), "must require "+s.name).
			WithHint("call AddRequirements on the default command")
	}
	s.defaultCommand = cmd
	return nil
}

// DefaultCommand returns the default command, or nil.
func (s *Subsystem) DefaultCommand() Command {
	return s.defaultCommand
}

// SetPeriodic sets a hook the scheduler calls once per tick for registered
// subsystems, before any command executes.
func (s *Subsystem) SetPeriodic(fn func()) {
	s.periodic = fn
}

// Periodic runs the periodic hook if one is set.
func (s *Subsystem) Periodic() {
	if s.periodic != nil {
		s.periodic()
	}
}
