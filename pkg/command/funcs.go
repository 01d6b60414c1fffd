package command

import "time"

// Funcs holds the lifecycle bodies of a Func command. Nil fields are no-ops;
// a nil IsFinished never finishes.
type Funcs struct {
	Initialize func()
	Execute    func()
	IsFinished func() bool
	End        func(interrupted bool)
}

// Func is a command whose lifecycle is supplied as closures.
type Func struct {
	Base
	fns Funcs
}

// New creates a Func command.
func New(name string, fns Funcs, requirements ...*Subsystem) *Func {
	f := &Func{fns: fns}
	f.SetName(name)
	f.AddRequirements(requirements...)
	return f
}

// Initialize implements Command.
func (f *Func) Initialize() {
	if f.fns.Initialize != nil {
		f.fns.Initialize()
	}
}

// Execute implements Command.
func (f *Func) Execute() {
	if f.fns.Execute != nil {
		f.fns.Execute()
	}
}

// IsFinished implements Command.
func (f *Func) IsFinished() bool {
	if f.fns.IsFinished != nil {
		return f.fns.IsFinished()
	}
	return false
}

// End implements Command.
func (f *Func) End(interrupted bool) {
	if f.fns.End != nil {
		f.fns.End(interrupted)
	}
}

// Instant runs action once in Initialize and finishes on the first tick.
func Instant(name string, action func(), requirements ...*Subsystem) *Func {
	return New(name, Funcs{
		Initialize: action,
		IsFinished: func() bool { return true },
	}, requirements...)
}

// None does nothing and finishes on the first tick.
func None() *Func {
	return Instant("none", nil)
}

// Run calls action every tick and never finishes on its own.
func Run(name string, action func(), requirements ...*Subsystem) *Func {
	return New(name, Funcs{Execute: action}, requirements...)
}

// StartEnd calls start on Initialize and end on End, and never finishes on its own.
func StartEnd(name string, start, end func(), requirements ...*Subsystem) *Func {
	return New(name, Funcs{
		Initialize: start,
		End: func(bool) {
			if end != nil {
				end()
			}
		},
	}, requirements...)
}

// RunEnd calls run every tick and end on End, and never finishes on its own.
func RunEnd(name string, run, end func(), requirements ...*Subsystem) *Func {
	return New(name, Funcs{
		Execute: run,
		End: func(bool) {
			if end != nil {
				end()
			}
		},
	}, requirements...)
}

// WaitUntil finishes on the first tick condition returns true. Like Wait it
// requires nothing and runs while disabled.
func WaitUntil(condition func() bool) *Func {
	f := New("wait_until", Funcs{IsFinished: condition})
	f.SetRunsWhenDisabled(true)
	return f
}

// WaitCommand finishes once a duration has elapsed since Initialize.
// It requires nothing and runs while disabled.
type WaitCommand struct {
	Base
	clock    Clock
	duration time.Duration
	start    time.Time
}

// Wait creates a WaitCommand on the system clock.
func Wait(d time.Duration) *WaitCommand {
	return WaitOn(SystemClock, d)
}

// WaitOn creates a WaitCommand reading time from clock.
func WaitOn(clock Clock, d time.Duration) *WaitCommand {
	w := &WaitCommand{clock: clock, duration: d}
	w.SetName("wait")
	w.SetRunsWhenDisabled(true)
	return w
}

// Initialize implements Command.
func (w *WaitCommand) Initialize() {
	w.start = w.clock.Now()
}

// Execute implements Command.
func (w *WaitCommand) Execute() {}

// IsFinished implements Command.
func (w *WaitCommand) IsFinished() bool {
	return w.clock.Now().Sub(w.start) >= w.duration
}

// End implements Command.
func (w *WaitCommand) End(bool) {}

// Elapsed returns the time since Initialize.
func (w *WaitCommand) Elapsed() time.Duration {
	return w.clock.Now().Sub(w.start)
}
