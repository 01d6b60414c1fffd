package command

import (
	"fmt"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// Sequential runs its children one after another. It requires the union of
// all children's requirements for its whole run, so a later child never
// conflicts with a resource held elsewhere.
type Sequential struct {
	Base
	commands []Command
	index    int
	running  bool
}

// NewSequential creates a Sequential composition owning commands.
func NewSequential(commands ...Command) (*Sequential, error) {
	s := &Sequential{index: -1}
	s.SetName("sequential")
	s.initComposite()
	if err := s.Add(commands...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends commands to the sequence. It fails while the sequence runs.
func (s *Sequential) Add(commands ...Command) error {
	if s.running {
		return fmt.Errorf("%s: %w", s.Name(), rcerrors.ErrCompositionRunning)
	}
	if err := adopt(s, s.commands, commands...); err != nil {
		return err
	}
	for _, c := range commands {
		s.commands = append(s.commands, c)
		s.absorb(c)
	}
	return nil
}

// Initialize implements Command.
func (s *Sequential) Initialize() {
	s.running = true
	s.index = 0
	if len(s.commands) > 0 {
		s.commands[0].Initialize()
	}
}

// Execute implements Command.
func (s *Sequential) Execute() {
	if s.index < 0 || s.index >= len(s.commands) {
		return
	}

	current := s.commands[s.index]
	current.Execute()
	if !current.IsFinished() {
		return
	}

	current.End(false)
	s.index++
	if s.index < len(s.commands) {
		s.commands[s.index].Initialize()
	}
}

// IsFinished implements Command.
func (s *Sequential) IsFinished() bool {
	return s.index >= len(s.commands)
}

// End implements Command.
func (s *Sequential) End(interrupted bool) {
	mustBeRunning(s, s.running)
	if interrupted && s.index >= 0 && s.index < len(s.commands) {
		s.commands[s.index].End(true)
	}
	s.index = -1
	s.running = false
}

// Current returns the index of the running child, or -1 when idle.
func (s *Sequential) Current() int {
	if !s.running {
		return -1
	}
	return s.index
}
