package scheduler

import (
	"fmt"
	"io"
	"log/slog"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/common/validation"
	"github.com/vnykmshr/robocmd/pkg/command"
	"github.com/vnykmshr/robocmd/pkg/metrics"
)

// Outcome reports what Schedule did with a command.
type Outcome int

const (
	// Scheduled means the command is now active and has been initialized.
	Scheduled Outcome = iota

	// Rejected means nothing changed: an owner of a required subsystem
	// defends it, or the command cannot run while disabled.
	Rejected

	// Deferred means the request was raised during Run and will be applied
	// once the current pass over the active commands completes.
	Deferred
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Scheduled:
		return "scheduled"
	case Rejected:
		return "rejected"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Config holds scheduler configuration.
type Config struct {
	// Name labels logs and metrics. Default: "scheduler".
	Name string

	// Disabled reports the robot's disabled signal. It is read once at the
	// start of every Run and on every Schedule. Nil means always enabled.
	Disabled func() bool

	// Logger receives scheduler events. Nil discards them.
	Logger *slog.Logger

	// Metrics records scheduler metrics. Nil records nothing.
	Metrics *metrics.Registry

	// Clock times each pass for the tick duration metric. Default: wall clock.
	Clock command.Clock
}

// entry is the scheduler's record of one active command.
type entry struct {
	cmd          command.Command
	requirements []*command.Subsystem
	ending       bool
}

type request struct {
	cmd    command.Command
	cancel bool
}

type termination struct {
	e           *entry
	interrupted bool
}

// Scheduler runs commands once per tick and arbitrates ownership of
// subsystems between them. It is not safe for concurrent use: every method
// must be called from the control loop's goroutine.
type Scheduler struct {
	name     string
	disabled func() bool
	log      *slog.Logger
	metrics  *metrics.Registry
	clock    command.Clock

	active []*entry
	index  map[command.Command]*entry
	owners map[*command.Subsystem]*entry

	subsystems []*command.Subsystem
	registered map[*command.Subsystem]bool

	// inRun is set while commands are executing or being ended; requests
	// raised then are queued in pending.
	inRun    bool
	draining bool
	pending  []request

	defaultLoop *EventLoop
	activeLoop  *EventLoop

	hooks hooks
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	name := cfg.Name
	if name == "" {
		name = "scheduler"
	}

	disabled := cfg.Disabled
	if disabled == nil {
		disabled = func() bool { return false }
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clock := cfg.Clock
	if clock == nil {
		clock = command.SystemClock
	}

	loop := NewEventLoop()
	s := &Scheduler{
		name:        name,
		disabled:    disabled,
		log:         logger.With(slog.String("scheduler", name)),
		metrics:     cfg.Metrics,
		clock:       clock,
		index:       make(map[command.Command]*entry),
		owners:      make(map[*command.Subsystem]*entry),
		registered:  make(map[*command.Subsystem]bool),
		defaultLoop: loop,
		activeLoop:  loop,
	}
	s.updateActiveGauge()
	return s
}

// Name returns the scheduler name.
func (s *Scheduler) Name() string {
	return s.name
}

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger {
	return s.log
}

// Register adds subsystems whose periodic hooks run every tick and whose
// default commands are started whenever they are unowned.
func (s *Scheduler) Register(subsystems ...*command.Subsystem) {
	for _, sub := range subsystems {
		if sub == nil || s.registered[sub] {
			continue
		}
		s.registered[sub] = true
		s.subsystems = append(s.subsystems, sub)
	}
}

// Unregister removes subsystems from the per-tick bookkeeping. It does not
// cancel the commands that own them.
func (s *Scheduler) Unregister(subsystems ...*command.Subsystem) {
	for _, sub := range subsystems {
		if !s.registered[sub] {
			continue
		}
		delete(s.registered, sub)
		for i, r := range s.subsystems {
			if r == sub {
				s.subsystems = append(s.subsystems[:i], s.subsystems[i+1:]...)
				break
			}
		}
	}
}

// Schedule starts cmd if it can own all its requirements.
//
// A grouped command, or one that is already active, fails with an ownership
// error and nothing changes. If any required subsystem is owned by a command
// that defends it (CancelIncoming), the outcome is Rejected and nothing
// changes. Otherwise every conflicting owner is interrupted, cmd becomes the
// owner of its requirements and its Initialize runs.
//
// Called from a command callback during Run, the request is queued and the
// outcome is Deferred.
func (s *Scheduler) Schedule(cmd command.Command) (Outcome, error) {
	if err := validation.ValidateNotNil("scheduler", "command", cmd); err != nil {
		return Rejected, err
	}
	if cmd.Grouped() {
		return Rejected, fmt.Errorf("schedule %s: %w", cmd.Name(), rcerrors.ErrGrouped)
	}
	if s.isActive(cmd) {
		return Rejected, fmt.Errorf("schedule %s: %w", cmd.Name(), rcerrors.ErrAlreadyScheduled)
	}

	if s.inRun {
		s.pending = append(s.pending, request{cmd: cmd})
		return Deferred, nil
	}
	outcome := s.schedule(cmd)
	s.drainPending()
	return outcome, nil
}

func (s *Scheduler) schedule(cmd command.Command) Outcome {
	if s.disabled() && !cmd.RunsWhenDisabled() {
		s.reject(cmd, "disabled")
		return Rejected
	}

	requirements := dedupe(cmd.Requirements())

	var displaced []*entry
	for _, sub := range requirements {
		owner, ok := s.owners[sub]
		if !ok {
			continue
		}
		if owner.cmd.InterruptionBehavior() == command.CancelIncoming {
			s.reject(cmd, "conflict", slog.String("subsystem", sub.Name()), slog.String("owner", owner.cmd.Name()))
			return Rejected
		}
		if !containsEntry(displaced, owner) {
			displaced = append(displaced, owner)
		}
	}

	for _, e := range displaced {
		s.terminate(e, true)
	}

	e := &entry{cmd: cmd, requirements: requirements}
	s.active = append(s.active, e)
	s.index[cmd] = e
	for _, sub := range requirements {
		s.owners[sub] = e
	}
	command.SetScheduled(cmd, true)
	cmd.Initialize()

	s.log.Debug("command scheduled", commandAttrs(cmd)...)
	if s.metrics != nil {
		s.metrics.CommandsScheduled.WithLabelValues(s.name).Inc()
	}
	s.updateActiveGauge()
	s.hooks.fire(s.hooks.initialize, cmd)
	return Scheduled
}

func (s *Scheduler) reject(cmd command.Command, reason string, attrs ...any) {
	args := append(commandAttrs(cmd), slog.String("reason", reason))
	s.log.Debug("schedule rejected", append(args, attrs...)...)
	if s.metrics != nil {
		s.metrics.SchedulesRejected.WithLabelValues(s.name, reason).Inc()
	}
}

// ScheduleAll schedules each command in order and returns the first error.
func (s *Scheduler) ScheduleAll(cmds ...command.Command) error {
	for _, cmd := range cmds {
		if _, err := s.Schedule(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Cancel interrupts cmd: its End(true) runs exactly once and it releases its
// subsystems. Cancel ignores interruption behavior and does nothing if cmd is
// not active. Called from a command callback during Run, the cancellation is
// applied once the current pass completes.
func (s *Scheduler) Cancel(cmds ...command.Command) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if s.inRun {
			s.pending = append(s.pending, request{cmd: cmd, cancel: true})
			continue
		}
		if e, ok := s.index[cmd]; ok {
			s.terminate(e, true)
		}
	}
	if !s.inRun {
		s.drainPending()
	}
}

// CancelAll interrupts every active command.
func (s *Scheduler) CancelAll() {
	cmds := make([]command.Command, 0, len(s.active))
	for _, e := range s.active {
		cmds = append(cmds, e.cmd)
	}
	s.Cancel(cmds...)
}

// CancelByID interrupts the active command with the given ID and reports
// whether one was found.
func (s *Scheduler) CancelByID(id string) bool {
	for _, e := range s.active {
		if e.cmd.ID() == id {
			s.Cancel(e.cmd)
			return true
		}
	}
	return false
}

// IsScheduled reports whether all the given commands are active.
func (s *Scheduler) IsScheduled(cmds ...command.Command) bool {
	for _, cmd := range cmds {
		if !s.isActive(cmd) {
			return false
		}
	}
	return true
}

func (s *Scheduler) isActive(cmd command.Command) bool {
	e, ok := s.index[cmd]
	return ok && !e.ending
}

// Requiring returns the active command that owns sub.
func (s *Scheduler) Requiring(sub *command.Subsystem) (command.Command, bool) {
	e, ok := s.owners[sub]
	if !ok {
		return nil, false
	}
	return e.cmd, true
}

// Active returns the active commands in the order they were scheduled.
func (s *Scheduler) Active() []command.Command {
	out := make([]command.Command, 0, len(s.active))
	for _, e := range s.active {
		out = append(out, e.cmd)
	}
	return out
}

// Subsystems returns the registered subsystems in registration order.
func (s *Scheduler) Subsystems() []*command.Subsystem {
	out := make([]*command.Subsystem, len(s.subsystems))
	copy(out, s.subsystems)
	return out
}

// Run performs one tick:
//
//  1. registered subsystems' periodic hooks run and the active event loop is polled
//  2. every active command either is interrupted because the robot is
//     disabled and it does not run disabled, or executes and is checked for
//     completion
//  3. the terminations found in step 2 are applied, then default commands
//     start on subsystems they released
//  4. schedule and cancel requests raised by commands during the tick are
//     applied in the order they were raised
//  5. default commands start on any registered subsystem left unowned
//
// The active set is never modified while it is being iterated. A panic in a
// command callback propagates to the caller; the scheduler stays usable.
func (s *Scheduler) Run() {
	if s.inRun {
		panic(fmt.Sprintf("scheduler %s: Run called re-entrantly", s.name))
	}
	start := s.clock.Now()
	disabled := s.disabled()

	for _, sub := range s.subsystems {
		sub.Periodic()
	}
	s.activeLoop.Poll()

	var released []*command.Subsystem
	func() {
		s.inRun = true
		defer func() { s.inRun = false }()

		var terms []termination
		// Commands found finished or disabled before a panic are still ended.
		defer func() { released = s.terminateAll(terms) }()

		for _, e := range s.active {
			if disabled && !e.cmd.RunsWhenDisabled() {
				terms = append(terms, termination{e: e, interrupted: true})
				continue
			}
			e.cmd.Execute()
			s.hooks.fire(s.hooks.execute, e.cmd)
			if e.cmd.IsFinished() {
				terms = append(terms, termination{e: e, interrupted: false})
			}
		}
	}()

	for _, sub := range released {
		s.scheduleDefault(sub)
	}
	s.drainPending()

	for _, sub := range s.subsystems {
		s.scheduleDefault(sub)
	}

	if s.metrics != nil {
		s.metrics.TickDuration.WithLabelValues(s.name).Observe(s.clock.Now().Sub(start).Seconds())
	}
}

// drainPending applies queued requests. Requests raised while applying them
// (from End) are appended and applied in the same drain.
func (s *Scheduler) drainPending() {
	if s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for len(s.pending) > 0 {
		req := s.pending[0]
		s.pending = s.pending[1:]

		if req.cancel {
			if e, ok := s.index[req.cmd]; ok {
				s.terminate(e, true)
			}
			continue
		}
		if s.isActive(req.cmd) {
			s.log.Debug("deferred schedule skipped, already active", commandAttrs(req.cmd)...)
			continue
		}
		s.schedule(req.cmd)
	}
	s.pending = nil
}

// scheduleDefault starts sub's default command if nothing owns sub.
func (s *Scheduler) scheduleDefault(sub *command.Subsystem) {
	def := sub.DefaultCommand()
	if def == nil {
		return
	}
	if _, owned := s.owners[sub]; owned || s.isActive(def) || def.Grouped() {
		return
	}
	s.schedule(def)
	s.drainPending()
}

// terminateAll applies terms in order. If an End panics, the remaining
// terms are still applied before the panic continues.
func (s *Scheduler) terminateAll(terms []termination) (released []*command.Subsystem) {
	for i, t := range terms {
		rest := terms[i+1:]
		done := false
		func() {
			defer func() {
				if !done {
					released = append(released, s.terminateAll(rest)...)
				}
			}()
			released = append(released, s.terminate(t.e, t.interrupted)...)
			done = true
		}()
	}
	return released
}

// terminate ends e exactly once, removes it from the active set and releases
// its subsystems. It returns the released subsystems. The entry is removed
// even when End panics.
func (s *Scheduler) terminate(e *entry, interrupted bool) (released []*command.Subsystem) {
	if e.ending {
		return nil
	}
	e.ending = true

	defer func() {
		s.remove(e)
		command.SetScheduled(e.cmd, false)
		for _, sub := range e.requirements {
			if s.owners[sub] == e {
				delete(s.owners, sub)
				released = append(released, sub)
			}
		}

		attrs := append(commandAttrs(e.cmd), slog.Bool("interrupted", interrupted))
		s.log.Debug("command ended", attrs...)
		if s.metrics != nil {
			if interrupted {
				s.metrics.CommandsInterrupted.WithLabelValues(s.name).Inc()
			} else {
				s.metrics.CommandsFinished.WithLabelValues(s.name).Inc()
			}
		}
		s.updateActiveGauge()
	}()

	// Requests raised from End are queued until the termination completes.
	wasInRun := s.inRun
	s.inRun = true
	func() {
		defer func() { s.inRun = wasInRun }()
		e.cmd.End(interrupted)
	}()

	if interrupted {
		s.hooks.fire(s.hooks.interrupt, e.cmd)
	} else {
		s.hooks.fire(s.hooks.finish, e.cmd)
	}
	return released
}

func (s *Scheduler) remove(e *entry) {
	delete(s.index, e.cmd)
	for i, a := range s.active {
		if a == e {
			s.active = append(s.active[:i:i], s.active[i+1:]...)
			return
		}
	}
}

// Reset interrupts every active command and then returns the scheduler to
// its initial state: no registered subsystems, no hooks, no event loop
// bindings and no queued requests. It must not be called from a command
// callback.
func (s *Scheduler) Reset() {
	if s.inRun {
		panic(fmt.Sprintf("scheduler %s: Reset called during Run", s.name))
	}
	s.CancelAll()
	s.active = nil
	s.index = make(map[command.Command]*entry)
	s.owners = make(map[*command.Subsystem]*entry)
	s.subsystems = nil
	s.registered = make(map[*command.Subsystem]bool)
	s.pending = nil
	s.hooks = hooks{}
	s.defaultLoop.Clear()
	s.activeLoop = s.defaultLoop
	s.updateActiveGauge()
}

func (s *Scheduler) updateActiveGauge() {
	if s.metrics != nil {
		s.metrics.ActiveCommands.WithLabelValues(s.name).Set(float64(len(s.active)))
	}
}

func commandAttrs(cmd command.Command) []any {
	return []any{slog.String("command", cmd.Name()), slog.String("command_id", cmd.ID())}
}

func dedupe(subs []*command.Subsystem) []*command.Subsystem {
	out := make([]*command.Subsystem, 0, len(subs))
	seen := make(map[*command.Subsystem]bool, len(subs))
	for _, sub := range subs {
		if sub == nil || seen[sub] {
			continue
		}
		seen[sub] = true
		out = append(out, sub)
	}
	return out
}

func containsEntry(entries []*entry, e *entry) bool {
	for _, x := range entries {
		if x == e {
			return true
		}
	}
	return false
}
