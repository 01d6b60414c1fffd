package command

import (
	"fmt"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

type member struct {
	cmd     Command
	running bool
}

// group is the shared core of the parallel compositions. Children run
// interleaved within one tick, in declaration order.
type group struct {
	Base
	members []*member
	running bool
}

func (g *group) commands() []Command {
	out := make([]Command, len(g.members))
	for i, m := range g.members {
		out[i] = m.cmd
	}
	return out
}

func (g *group) add(owner Command, commands ...Command) error {
	if g.running {
		return fmt.Errorf("%s: %w", g.Name(), rcerrors.ErrCompositionRunning)
	}
	existing := g.commands()
	if err := checkChildren(owner, existing, commands...); err != nil {
		return err
	}
	if err := disjoint(g.Name(), existing, commands...); err != nil {
		return err
	}
	markGrouped(commands...)
	for _, c := range commands {
		g.members = append(g.members, &member{cmd: c})
		g.absorb(c)
	}
	return nil
}

func (g *group) initializeAll() {
	g.running = true
	for _, m := range g.members {
		m.cmd.Initialize()
		m.running = true
	}
}

// executeRunning executes every running child and ends the ones that report
// finished. It returns the children that finished this tick.
func (g *group) executeRunning() []Command {
	var finished []Command
	for _, m := range g.members {
		if !m.running {
			continue
		}
		m.cmd.Execute()
		if m.cmd.IsFinished() {
			m.cmd.End(false)
			m.running = false
			finished = append(finished, m.cmd)
		}
	}
	return finished
}

func (g *group) anyRunning() bool {
	for _, m := range g.members {
		if m.running {
			return true
		}
	}
	return false
}

func (g *group) interruptRunning() {
	for _, m := range g.members {
		if m.running {
			m.cmd.End(true)
			m.running = false
		}
	}
}

// Parallel runs its children at the same time and finishes when the last one
// finishes. Children that finish early are ended immediately while the
// others keep running.
type Parallel struct {
	group
}

// NewParallel creates a Parallel composition owning commands. Children must
// not share requirements.
func NewParallel(commands ...Command) (*Parallel, error) {
	p := &Parallel{}
	p.SetName("parallel")
	p.initComposite()
	if err := p.Add(commands...); err != nil {
		return nil, err
	}
	return p, nil
}

// Add adds commands to the composition. It fails while the composition runs.
func (p *Parallel) Add(commands ...Command) error {
	return p.add(p, commands...)
}

// Initialize implements Command.
func (p *Parallel) Initialize() {
	p.initializeAll()
}

// Execute implements Command.
func (p *Parallel) Execute() {
	p.executeRunning()
}

// IsFinished implements Command.
func (p *Parallel) IsFinished() bool {
	return !p.anyRunning()
}

// End implements Command.
func (p *Parallel) End(interrupted bool) {
	mustBeRunning(p, p.running)
	if interrupted {
		p.interruptRunning()
	}
	p.running = false
}

// Race runs its children at the same time and finishes as soon as any one of
// them finishes. The children still running at that point are interrupted.
type Race struct {
	group
	done bool
}

// NewRace creates a Race composition owning commands. Children must not share
// requirements.
func NewRace(commands ...Command) (*Race, error) {
	r := &Race{}
	r.SetName("race")
	r.initComposite()
	if err := r.Add(commands...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add adds commands to the composition. It fails while the composition runs.
func (r *Race) Add(commands ...Command) error {
	return r.add(r, commands...)
}

// Initialize implements Command.
func (r *Race) Initialize() {
	r.done = false
	r.initializeAll()
}

// Execute implements Command.
func (r *Race) Execute() {
	if len(r.executeRunning()) > 0 {
		r.done = true
	}
}

// IsFinished implements Command. A race with no children finishes at once.
func (r *Race) IsFinished() bool {
	return r.done || len(r.members) == 0
}

// End implements Command.
func (r *Race) End(bool) {
	mustBeRunning(r, r.running)
	r.interruptRunning()
	r.running = false
}

// Deadline runs a deadline child alongside other children and finishes when
// the deadline child finishes, interrupting whatever else is still running.
type Deadline struct {
	group
	deadline Command
	done     bool
}

// NewDeadline creates a Deadline composition. deadline decides when the
// composition ends; others run alongside it. Children must not share
// requirements.
func NewDeadline(deadline Command, others ...Command) (*Deadline, error) {
	d := &Deadline{deadline: deadline}
	d.SetName("deadline")
	d.initComposite()
	if deadline == nil {
		return nil, rcerrors.NewValidationError(d.Name(), "deadline", nil, "cannot be nil").
			WithHint("provide the command that decides when the composition ends")
	}
	if err := d.add(d, append([]Command{deadline}, others...)...); err != nil {
		return nil, err
	}
	return d, nil
}

// Add adds non-deadline commands. It fails while the composition runs.
func (d *Deadline) Add(commands ...Command) error {
	return d.add(d, commands...)
}

// DeadlineCommand returns the child that decides when the composition ends.
func (d *Deadline) DeadlineCommand() Command {
	return d.deadline
}

// Initialize implements Command.
func (d *Deadline) Initialize() {
	d.done = false
	d.initializeAll()
}

// Execute implements Command.
func (d *Deadline) Execute() {
	for _, c := range d.executeRunning() {
		if c == d.deadline {
			d.done = true
		}
	}
}

// IsFinished implements Command.
func (d *Deadline) IsFinished() bool {
	return d.done
}

// End implements Command.
func (d *Deadline) End(bool) {
	mustBeRunning(d, d.running)
	d.interruptRunning()
	d.running = false
}
