package scheduler

import "github.com/vnykmshr/robocmd/pkg/command"

type hooks struct {
	initialize []func(command.Command)
	execute    []func(command.Command)
	interrupt  []func(command.Command)
	finish     []func(command.Command)
}

func (h *hooks) fire(fns []func(command.Command), cmd command.Command) {
	for _, fn := range fns {
		fn(cmd)
	}
}

// OnInitialize registers fn to run after a command is scheduled and initialized.
func (s *Scheduler) OnInitialize(fn func(command.Command)) {
	if fn != nil {
		s.hooks.initialize = append(s.hooks.initialize, fn)
	}
}

// OnExecute registers fn to run after every Execute of an active command.
func (s *Scheduler) OnExecute(fn func(command.Command)) {
	if fn != nil {
		s.hooks.execute = append(s.hooks.execute, fn)
	}
}

// OnInterrupt registers fn to run after a command ends interrupted.
func (s *Scheduler) OnInterrupt(fn func(command.Command)) {
	if fn != nil {
		s.hooks.interrupt = append(s.hooks.interrupt, fn)
	}
}

// OnFinish registers fn to run after a command ends normally.
func (s *Scheduler) OnFinish(fn func(command.Command)) {
	if fn != nil {
		s.hooks.finish = append(s.hooks.finish, fn)
	}
}
