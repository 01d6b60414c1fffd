package command

import "time"

// WithTimeout interrupts c if it has not finished after timeout.
func WithTimeout(c Command, timeout time.Duration) (*Race, error) {
	return WithTimeoutOn(SystemClock, c, timeout)
}

// WithTimeoutOn is WithTimeout reading time from clock.
func WithTimeoutOn(clock Clock, c Command, timeout time.Duration) (*Race, error) {
	r, err := NewRace(c, WaitOn(clock, timeout))
	if err != nil {
		return nil, err
	}
	r.SetName(c.Name())
	return r, nil
}

// Until interrupts c once condition returns true.
func Until(c Command, condition func() bool) (*Race, error) {
	r, err := NewRace(c, WaitUntil(condition))
	if err != nil {
		return nil, err
	}
	r.SetName(c.Name())
	return r, nil
}

// AndThen runs next after c finishes.
func AndThen(c Command, next ...Command) (*Sequential, error) {
	return NewSequential(append([]Command{c}, next...)...)
}

// BeforeStarting runs before ahead of c.
func BeforeStarting(c, before Command) (*Sequential, error) {
	return NewSequential(before, c)
}

// AlongWith runs c and others in parallel until all finish.
func AlongWith(c Command, others ...Command) (*Parallel, error) {
	return NewParallel(append([]Command{c}, others...)...)
}

// RaceWith runs c and others in parallel until any finishes.
func RaceWith(c Command, others ...Command) (*Race, error) {
	return NewRace(append([]Command{c}, others...)...)
}

// DeadlineWith runs others alongside c until c finishes.
func DeadlineWith(c Command, others ...Command) (*Deadline, error) {
	return NewDeadline(c, others...)
}

// Repeatedly restarts c whenever it finishes.
func Repeatedly(c Command) (*Repeat, error) {
	return NewRepeat(c)
}

// IgnoringDisable overrides whether c keeps running while disabled.
func IgnoringDisable(c Command, run bool) (*Wrapper, error) {
	w, err := Wrap(c)
	if err != nil {
		return nil, err
	}
	w.SetRunsWhenDisabled(run)
	return w, nil
}

// WithInterruptBehavior overrides how c reacts to conflicting incoming commands.
func WithInterruptBehavior(c Command, behavior InterruptionBehavior) (*Wrapper, error) {
	w, err := Wrap(c)
	if err != nil {
		return nil, err
	}
	w.SetInterruptionBehavior(behavior)
	return w, nil
}

// WithName renames c.
func WithName(c Command, name string) (*Wrapper, error) {
	w, err := Wrap(c)
	if err != nil {
		return nil, err
	}
	w.SetName(name)
	return w, nil
}

// Must panics if err is non-nil. It is meant for building fixed command trees
// at startup, where an ownership error is a programming mistake.
func Must[T Command](c T, err error) T {
	if err != nil {
		panic(err)
	}
	return c
}
