// Package commandtest provides recording commands for testing schedulers and
// compositions.
package commandtest

import (
	"fmt"
	"sync"

	"github.com/vnykmshr/robocmd/pkg/command"
)

// Log is an ordered record of lifecycle calls shared by several probes, so
// tests can assert ordering across commands.
type Log struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event.
func (l *Log) Record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events.
func (l *Log) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// Index returns the position of the first occurrence of event, or -1.
func (l *Log) Index(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

// Reset clears the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Probe is a command that counts and records its lifecycle calls.
// Events are recorded as "<name>.init", "<name>.exec", "<name>.finished"
// (only when IsFinished returns true) and "<name>.end(<interrupted>)".
type Probe struct {
	command.Base

	// FinishAfter makes IsFinished return true once Execute has run this many
	// times in the current run. Zero never finishes.
	FinishAfter int

	// OnExecute, if set, runs inside Execute.
	OnExecute func()

	// OnEnd, if set, runs inside End after the call is counted.
	OnEnd func(interrupted bool)

	log *Log

	Initializes   int
	Executes      int
	FinishChecks  int
	Ends          int
	Interruptions int

	runExecutes int
}

// New creates a Probe requiring the given subsystems. log may be nil.
func New(name string, log *Log, requirements ...*command.Subsystem) *Probe {
	p := &Probe{log: log}
	p.SetName(name)
	p.AddRequirements(requirements...)
	return p
}

// Finishing creates a Probe that finishes after n executions.
func Finishing(name string, n int, log *Log, requirements ...*command.Subsystem) *Probe {
	p := New(name, log, requirements...)
	p.FinishAfter = n
	return p
}

func (p *Probe) record(event string) {
	if p.log != nil {
		p.log.Record(p.Name() + "." + event)
	}
}

// Initialize implements command.Command.
func (p *Probe) Initialize() {
	p.Initializes++
	p.runExecutes = 0
	p.record("init")
}

// Execute implements command.Command.
func (p *Probe) Execute() {
	p.Executes++
	p.runExecutes++
	p.record("exec")
	if p.OnExecute != nil {
		p.OnExecute()
	}
}

// IsFinished implements command.Command.
func (p *Probe) IsFinished() bool {
	p.FinishChecks++
	done := p.FinishAfter > 0 && p.runExecutes >= p.FinishAfter
	if done {
		p.record("finished")
	}
	return done
}

// End implements command.Command.
func (p *Probe) End(interrupted bool) {
	p.Ends++
	if interrupted {
		p.Interruptions++
	}
	p.record(fmt.Sprintf("end(%t)", interrupted))
	if p.OnEnd != nil {
		p.OnEnd(interrupted)
	}
}
