package command

// Repeat restarts its child every time it finishes and never finishes on its
// own. Interrupting the Repeat interrupts the child if it is mid-run.
type Repeat struct {
	Base
	cmd     Command
	ended   bool
	running bool
}

// NewRepeat creates a Repeat composition owning cmd.
func NewRepeat(cmd Command) (*Repeat, error) {
	r := &Repeat{cmd: cmd}
	r.SetName("repeat")
	r.initComposite()
	if err := adopt(r, nil, cmd); err != nil {
		return nil, err
	}
	r.absorb(cmd)
	r.SetName("repeat(" + cmd.Name() + ")")
	return r, nil
}

// Initialize implements Command.
func (r *Repeat) Initialize() {
	r.running = true
	r.ended = false
	r.cmd.Initialize()
}

// Execute implements Command.
func (r *Repeat) Execute() {
	if r.ended {
		r.ended = false
		r.cmd.Initialize()
	}
	r.cmd.Execute()
	if r.cmd.IsFinished() {
		r.cmd.End(false)
		r.ended = true
	}
}

// IsFinished implements Command.
func (r *Repeat) IsFinished() bool {
	return false
}

// End implements Command.
func (r *Repeat) End(interrupted bool) {
	mustBeRunning(r, r.running)
	if !r.ended {
		r.cmd.End(interrupted)
		r.ended = true
	}
	r.running = false
}
