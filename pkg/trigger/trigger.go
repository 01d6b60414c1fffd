// Package trigger binds commands to boolean conditions such as buttons,
// sensors and driver-station state. Each binding is an edge detector polled
// once per tick by the scheduler's event loop.
package trigger

import (
	"log/slog"
	"time"

	"github.com/vnykmshr/robocmd/pkg/command"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
)

// Trigger is a condition polled by an event loop.
type Trigger struct {
	sched     *scheduler.Scheduler
	loop      *scheduler.EventLoop
	condition func() bool
}

// New creates a trigger on the scheduler's default event loop.
func New(sched *scheduler.Scheduler, condition func() bool) *Trigger {
	return NewOnLoop(sched, sched.DefaultLoop(), condition)
}

// NewOnLoop creates a trigger polled by loop. Commands it starts are
// scheduled on sched.
func NewOnLoop(sched *scheduler.Scheduler, loop *scheduler.EventLoop, condition func() bool) *Trigger {
	if condition == nil {
		condition = func() bool { return false }
	}
	return &Trigger{sched: sched, loop: loop, condition: condition}
}

// Get evaluates the condition.
func (t *Trigger) Get() bool {
	return t.condition()
}

// bind registers an edge handler. The previous value is sampled at bind time,
// so a condition that is already true does not count as a rising edge.
func (t *Trigger) bind(onEdge func(previous, current bool)) *Trigger {
	previous := t.condition()
	t.loop.Bind(func() {
		current := t.condition()
		onEdge(previous, current)
		previous = current
	})
	return t
}

func (t *Trigger) schedule(cmd command.Command) {
	if _, err := t.sched.Schedule(cmd); err != nil {
		t.sched.Logger().Warn("trigger binding failed to schedule",
			slog.String("command", cmd.Name()), slog.Any("error", err))
	}
}

// OnTrue schedules cmd when the condition changes to true.
func (t *Trigger) OnTrue(cmd command.Command) *Trigger {
	return t.bind(func(previous, current bool) {
		if !previous && current {
			t.schedule(cmd)
		}
	})
}

// OnFalse schedules cmd when the condition changes to false.
func (t *Trigger) OnFalse(cmd command.Command) *Trigger {
	return t.bind(func(previous, current bool) {
		if previous && !current {
			t.schedule(cmd)
		}
	})
}

// WhileTrue schedules cmd when the condition changes to true and cancels it
// when the condition changes to false.
func (t *Trigger) WhileTrue(cmd command.Command) *Trigger {
	return t.bind(func(previous, current bool) {
		switch {
		case !previous && current:
			t.schedule(cmd)
		case previous && !current:
			t.sched.Cancel(cmd)
		}
	})
}

// WhileFalse schedules cmd when the condition changes to false and cancels
// it when the condition changes to true.
func (t *Trigger) WhileFalse(cmd command.Command) *Trigger {
	return t.bind(func(previous, current bool) {
		switch {
		case previous && !current:
			t.schedule(cmd)
		case !previous && current:
			t.sched.Cancel(cmd)
		}
	})
}

// ToggleOnTrue starts cmd on a rising edge if it is not running and cancels
// it if it is.
func (t *Trigger) ToggleOnTrue(cmd command.Command) *Trigger {
	return t.bind(func(previous, current bool) {
		if previous || !current {
			return
		}
		if t.sched.IsScheduled(cmd) {
			t.sched.Cancel(cmd)
		} else {
			t.schedule(cmd)
		}
	})
}

// And returns a trigger that is true when both conditions are.
func (t *Trigger) And(other func() bool) *Trigger {
	return NewOnLoop(t.sched, t.loop, func() bool { return t.condition() && other() })
}

// Or returns a trigger that is true when either condition is.
func (t *Trigger) Or(other func() bool) *Trigger {
	return NewOnLoop(t.sched, t.loop, func() bool { return t.condition() || other() })
}

// Negate returns a trigger that is true when t is false.
func (t *Trigger) Negate() *Trigger {
	return NewOnLoop(t.sched, t.loop, func() bool { return !t.condition() })
}

// Debounce returns a trigger that changes value only after t's condition has
// held the new value for d.
func (t *Trigger) Debounce(d time.Duration) *Trigger {
	return t.DebounceOn(command.SystemClock, d)
}

// DebounceOn is Debounce with an explicit clock.
func (t *Trigger) DebounceOn(clock command.Clock, d time.Duration) *Trigger {
	deb := newDebouncer(clock, d, t.condition())
	return NewOnLoop(t.sched, t.loop, func() bool { return deb.calculate(t.condition()) })
}

type debouncer struct {
	clock    command.Clock
	duration time.Duration
	baseline bool
	changed  time.Time
}

func newDebouncer(clock command.Clock, d time.Duration, initial bool) *debouncer {
	return &debouncer{clock: clock, duration: d, baseline: initial, changed: clock.Now()}
}

func (d *debouncer) calculate(input bool) bool {
	now := d.clock.Now()
	if input == d.baseline {
		d.changed = now
		return d.baseline
	}
	if now.Sub(d.changed) >= d.duration {
		d.baseline = input
		d.changed = now
	}
	return d.baseline
}
