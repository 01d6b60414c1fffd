package command

import (
	"time"

	"github.com/google/uuid"
)

// InterruptionBehavior decides what happens when a newly scheduled command
// requires a subsystem this command currently owns.
type InterruptionBehavior int

const (
	// CancelSelf yields: this command is interrupted and the incoming command runs.
	CancelSelf InterruptionBehavior = iota

	// CancelIncoming defends: the incoming command is rejected.
	CancelIncoming
)

// String returns the behavior name.
func (b InterruptionBehavior) String() string {
	switch b {
	case CancelSelf:
		return "cancel_self"
	case CancelIncoming:
		return "cancel_incoming"
	default:
		return "unknown"
	}
}

// Command is a schedulable unit of behavior.
//
// The lifecycle methods are called only by the scheduler or by the
// composition that owns the command:
//   - Initialize once when the command becomes active
//   - Execute once per tick, followed by IsFinished
//   - End exactly once when the command terminates; interrupted is false
//     for normal completion and true for cancellation or displacement
//
// The metadata methods are supplied by embedding Base, which every
// implementation must do.
type Command interface {
	Initialize()
	Execute()
	IsFinished() bool
	End(interrupted bool)

	// Requirements returns the subsystems the command needs exclusively.
	// The scheduler copies the result when the command is scheduled.
	Requirements() []*Subsystem

	InterruptionBehavior() InterruptionBehavior
	RunsWhenDisabled() bool

	// Name is a human-readable label used in logs and dashboards.
	Name() string

	// ID is a stable unique identifier for external tooling.
	ID() string

	// Grouped reports whether a composition owns this command.
	Grouped() bool

	// Scheduled reports whether a scheduler holds this command as active.
	Scheduled() bool

	base() *Base
}

// Base carries the command metadata that the scheduler and compositions read.
// Embed it in every Command implementation. The zero value is a command with
// no requirements that yields to incoming commands and does not run while
// disabled.
type Base struct {
	name             string
	id               string
	requirements     []*Subsystem
	interruption     InterruptionBehavior
	runsWhenDisabled bool
	grouped          bool
	scheduled        bool
}

// Name returns the command name, or "command" if none was set.
func (b *Base) Name() string {
	if b.name == "" {
		return "command"
	}
	return b.name
}

// SetName sets the command name.
func (b *Base) SetName(name string) {
	b.name = name
}

// ID returns the command's unique identifier, assigning one on first use.
func (b *Base) ID() string {
	if b.id == "" {
		b.id = uuid.NewString()
	}
	return b.id
}

// Requirements returns a copy of the declared requirements.
func (b *Base) Requirements() []*Subsystem {
	out := make([]*Subsystem, len(b.requirements))
	copy(out, b.requirements)
	return out
}

// AddRequirements declares subsystems this command needs. Duplicates and nil
// subsystems are ignored.
func (b *Base) AddRequirements(subsystems ...*Subsystem) {
	for _, s := range subsystems {
		if s == nil || b.requires(s) {
			continue
		}
		b.requirements = append(b.requirements, s)
	}
}

// HasRequirement reports whether s is among the declared requirements.
func (b *Base) HasRequirement(s *Subsystem) bool {
	return b.requires(s)
}

func (b *Base) requires(s *Subsystem) bool {
	for _, r := range b.requirements {
		if r == s {
			return true
		}
	}
	return false
}

// InterruptionBehavior returns the configured behavior.
func (b *Base) InterruptionBehavior() InterruptionBehavior {
	return b.interruption
}

// SetInterruptionBehavior sets the configured behavior.
func (b *Base) SetInterruptionBehavior(behavior InterruptionBehavior) {
	b.interruption = behavior
}

// RunsWhenDisabled reports whether the command keeps running while disabled.
func (b *Base) RunsWhenDisabled() bool {
	return b.runsWhenDisabled
}

// SetRunsWhenDisabled sets whether the command keeps running while disabled.
func (b *Base) SetRunsWhenDisabled(run bool) {
	b.runsWhenDisabled = run
}

// Grouped reports whether a composition owns this command.
func (b *Base) Grouped() bool {
	return b.grouped
}

// Scheduled reports whether a scheduler holds this command as active.
func (b *Base) Scheduled() bool {
	return b.scheduled
}

// SetScheduled records whether a scheduler holds c as active. Schedulers set
// it when c is initialized and clear it when c ends; compositions refuse
// scheduled children.
func SetScheduled(c Command, scheduled bool) {
	c.base().scheduled = scheduled
}

func (b *Base) base() *Base {
	return b
}

// Clock provides the current time to time-based commands.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}
