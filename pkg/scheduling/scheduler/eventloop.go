package scheduler

// EventLoop is an ordered set of actions polled once per tick. Trigger
// bindings register their edge checks here.
type EventLoop struct {
	bindings []func()
}

// NewEventLoop returns an empty event loop.
func NewEventLoop() *EventLoop {
	return &EventLoop{}
}

// Bind adds an action polled on every Poll, after those already bound.
func (l *EventLoop) Bind(fn func()) {
	if fn != nil {
		l.bindings = append(l.bindings, fn)
	}
}

// Poll runs every bound action in order. Actions bound during a poll run
// from the next poll on.
func (l *EventLoop) Poll() {
	bindings := l.bindings
	for _, fn := range bindings {
		fn()
	}
}

// Clear removes all bindings.
func (l *EventLoop) Clear() {
	l.bindings = nil
}

// Len returns the number of bound actions.
func (l *EventLoop) Len() int {
	return len(l.bindings)
}

// DefaultLoop returns the event loop the scheduler owns. Triggers built with
// trigger.New bind here.
func (s *Scheduler) DefaultLoop() *EventLoop {
	return s.defaultLoop
}

// ActiveLoop returns the event loop polled by Run.
func (s *Scheduler) ActiveLoop() *EventLoop {
	return s.activeLoop
}

// SetActiveLoop selects the event loop polled by Run. Passing nil restores
// the default loop.
func (s *Scheduler) SetActiveLoop(loop *EventLoop) {
	if loop == nil {
		loop = s.defaultLoop
	}
	s.activeLoop = loop
}
