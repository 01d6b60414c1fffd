package command

import (
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// Conditional runs one of two commands, chosen by evaluating condition once
// at Initialize. The unselected command receives no lifecycle calls for that
// run. Requirements and traits cover both branches because the outcome is not
// known until the command starts.
type Conditional struct {
	Base
	onTrue    Command
	onFalse   Command
	condition func() bool
	selected  Command
}

// NewConditional creates a Conditional composition owning onTrue and onFalse.
func NewConditional(onTrue, onFalse Command, condition func() bool) (*Conditional, error) {
	c := &Conditional{
		onTrue:    onTrue,
		onFalse:   onFalse,
		condition: condition,
	}
	c.SetName("conditional")
	c.initComposite()
	if condition == nil {
		return nil, rcerrors.NewValidationError(c.Name(), "condition", nil, "cannot be nil").
			WithHint("provide a func() bool evaluated when the command starts")
	}
	if err := adopt(c, nil, onTrue, onFalse); err != nil {
		return nil, err
	}
	c.absorb(onTrue)
	c.absorb(onFalse)
	return c, nil
}

// Initialize implements Command.
func (c *Conditional) Initialize() {
	if c.condition() {
		c.selected = c.onTrue
	} else {
		c.selected = c.onFalse
	}
	c.selected.Initialize()
}

// Execute implements Command.
func (c *Conditional) Execute() {
	c.selected.Execute()
}

// IsFinished implements Command.
func (c *Conditional) IsFinished() bool {
	return c.selected.IsFinished()
}

// End implements Command.
func (c *Conditional) End(interrupted bool) {
	mustBeRunning(c, c.selected != nil)
	c.selected.End(interrupted)
	c.selected = nil
}

// Selected returns the branch chosen for the current run, or nil when idle.
func (c *Conditional) Selected() Command {
	return c.selected
}
