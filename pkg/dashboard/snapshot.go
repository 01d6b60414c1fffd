package dashboard

import (
	"time"

	"github.com/vnykmshr/robocmd/pkg/command"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
)

// CommandInfo describes one active command.
type CommandInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Requirements     []string `json:"requirements"`
	Interruption     string   `json:"interruption"`
	RunsWhenDisabled bool     `json:"runs_when_disabled"`
}

// Snapshot is the scheduler state published to the dashboard.
type Snapshot struct {
	Scheduler string        `json:"scheduler"`
	Tick      uint64        `json:"tick"`
	Mode      string        `json:"mode,omitempty"`
	Time      time.Time     `json:"time"`
	Commands  []CommandInfo `json:"commands"`

	// Owners maps each registered subsystem to the ID of the command that
	// owns it, or "" when it is free.
	Owners map[string]string `json:"owners"`
}

// Capture reads the scheduler's state. It must run on the control loop.
func Capture(s *scheduler.Scheduler, tick uint64, now time.Time) Snapshot {
	snap := Snapshot{
		Scheduler: s.Name(),
		Tick:      tick,
		Time:      now,
		Commands:  []CommandInfo{},
		Owners:    make(map[string]string),
	}

	for _, c := range s.Active() {
		snap.Commands = append(snap.Commands, describe(c))
	}
	for _, sub := range s.Subsystems() {
		owner := ""
		if c, ok := s.Requiring(sub); ok {
			owner = c.ID()
		}
		snap.Owners[sub.Name()] = owner
	}
	return snap
}

func describe(c command.Command) CommandInfo {
	reqs := c.Requirements()
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.Name())
	}
	return CommandInfo{
		ID:               c.ID(),
		Name:             c.Name(),
		Requirements:     names,
		Interruption:     c.InterruptionBehavior().String(),
		RunsWhenDisabled: c.RunsWhenDisabled(),
	}
}
