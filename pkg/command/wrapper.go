package command

// Wrapper forwards the lifecycle to a single owned command while letting the
// caller override its name, interruption behavior and disabled handling.
type Wrapper struct {
	Base
	cmd Command
}

// Wrap creates a Wrapper owning cmd. The wrapper starts with cmd's name,
// requirements and traits.
func Wrap(cmd Command) (*Wrapper, error) {
	w := &Wrapper{cmd: cmd}
	w.SetName("wrapper")
	if err := adopt(w, nil, cmd); err != nil {
		return nil, err
	}
	w.SetName(cmd.Name())
	w.AddRequirements(cmd.Requirements()...)
	w.SetInterruptionBehavior(cmd.InterruptionBehavior())
	w.SetRunsWhenDisabled(cmd.RunsWhenDisabled())
	return w, nil
}

// Unwrap returns the wrapped command.
func (w *Wrapper) Unwrap() Command {
	return w.cmd
}

// Initialize implements Command.
func (w *Wrapper) Initialize() { w.cmd.Initialize() }

// Execute implements Command.
func (w *Wrapper) Execute() { w.cmd.Execute() }

// IsFinished implements Command.
func (w *Wrapper) IsFinished() bool { return w.cmd.IsFinished() }

// End implements Command.
func (w *Wrapper) End(interrupted bool) { w.cmd.End(interrupted) }
