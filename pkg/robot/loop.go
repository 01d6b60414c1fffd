// Package robot drives the scheduler at a fixed period and turns
// driver-station mode changes into lifecycle hooks.
package robot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vnykmshr/robocmd/pkg/command"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/common/validation"
	"github.com/vnykmshr/robocmd/pkg/dashboard"
	"github.com/vnykmshr/robocmd/pkg/metrics"
	"github.com/vnykmshr/robocmd/pkg/ratelimit/bucket"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	"github.com/vnykmshr/robocmd/pkg/station"
)

// DefaultPeriod is the standard 50 Hz control period.
const DefaultPeriod = 20 * time.Millisecond

// Hooks are called on the loop goroutine around mode changes and on
// every tick.
type Hooks struct {
	// ModeInit runs once when the robot enters a mode, before the tick's
	// scheduler pass. It is where autonomous routines get scheduled.
	ModeInit func(mode station.Mode)

	// ModeExit runs once when the robot leaves a mode.
	ModeExit func(mode station.Mode)

	// Periodic runs every tick after the scheduler pass.
	Periodic func(mode station.Mode)
}

// Config configures a Loop.
type Config struct {
	// Name labels logs and metrics. Default: "robot".
	Name string

	// Period is the target tick period. Default: 20ms.
	Period time.Duration

	Scheduler *scheduler.Scheduler

	// Station supplies the mode. Nil runs permanently in Teleop.
	Station *station.Station

	// Dashboard, if set, is updated after every scheduler pass.
	Dashboard *dashboard.Publisher

	Hooks Hooks

	// OverrunWarnings rate-limits overrun log lines. Default: one per
	// second, burst 1.
	OverrunWarnings *bucket.Limiter

	Clock   command.Clock
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// Loop is the robot's main loop.
type Loop struct {
	name      string
	period    time.Duration
	sched     *scheduler.Scheduler
	station   *station.Station
	dashboard *dashboard.Publisher
	hooks     Hooks
	overruns  *bucket.Limiter
	clock     command.Clock
	log       *slog.Logger
	metrics   *metrics.Registry

	mode    station.Mode
	started bool
	ticks   uint64
}

// New creates a loop.
func New(cfg Config) (*Loop, error) {
	if err := validation.ValidateNotNil("robot", "scheduler", cfg.Scheduler); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "robot"
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if err := validation.ValidatePositiveDuration("robot", "period", cfg.Period); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = command.SystemClock
	}
	if cfg.OverrunWarnings == nil {
		limiter, err := bucket.NewWithConfig(bucket.Config{
			Rate:          bucket.Every(time.Second),
			Burst:         1,
			Clock:         cfg.Clock,
			InitialTokens: -1,
		})
		if err != nil {
			return nil, err
		}
		cfg.OverrunWarnings = limiter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Loop{
		name:      cfg.Name,
		period:    cfg.Period,
		sched:     cfg.Scheduler,
		station:   cfg.Station,
		dashboard: cfg.Dashboard,
		hooks:     cfg.Hooks,
		overruns:  cfg.OverrunWarnings,
		clock:     cfg.Clock,
		log:       logger.With(slog.String("loop", cfg.Name)),
		metrics:   cfg.Metrics,
	}, nil
}

// Mode returns the mode seen by the last tick.
func (l *Loop) Mode() station.Mode {
	return l.mode
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Step runs one tick: mode bookkeeping, the scheduler pass, the periodic
// hook and the dashboard. A panic from a command or hook is recovered and
// returned as an error.
func (l *Loop) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = rcerrors.NewOperationError("robot", "step", fmt.Errorf("panic: %v", r)).
				WithContext(fmt.Sprintf("tick %d", l.ticks))
			l.log.Error("tick panicked", slog.Uint64("tick", l.ticks), slog.Any("panic", r))
		}
	}()

	start := l.clock.Now()

	mode := station.Teleop
	if l.station != nil {
		mode = l.station.Update()
	}
	l.transition(mode)

	l.sched.Run()

	if l.hooks.Periodic != nil {
		l.hooks.Periodic(mode)
	}
	if l.dashboard != nil {
		l.dashboard.Update()
	}

	l.ticks++
	if l.metrics != nil {
		l.metrics.LoopTicks.WithLabelValues(l.name).Inc()
	}

	if elapsed := l.clock.Now().Sub(start); elapsed > l.period {
		if l.metrics != nil {
			l.metrics.LoopOverruns.WithLabelValues(l.name).Inc()
		}
		if l.overruns.Allow() {
			l.log.Warn("loop overrun",
				slog.Duration("elapsed", elapsed),
				slog.Duration("period", l.period),
				slog.Uint64("tick", l.ticks))
		}
	}
	return nil
}

func (l *Loop) transition(mode station.Mode) {
	if l.started && mode == l.mode {
		return
	}
	if l.started && l.hooks.ModeExit != nil {
		l.hooks.ModeExit(l.mode)
	}
	previous := l.mode
	l.mode = mode
	l.started = true

	l.log.Info("entering mode", slog.String("mode", mode.String()), slog.String("previous", previous.String()))
	if l.metrics != nil {
		for _, m := range station.Modes() {
			v := 0.0
			if m == mode {
				v = 1
			}
			l.metrics.LoopMode.WithLabelValues(l.name, m.String()).Set(v)
		}
	}
	if l.hooks.ModeInit != nil {
		l.hooks.ModeInit(mode)
	}
}

// Run calls Step every period until ctx is done or a tick fails. A tick that
// overruns delays the next one rather than queueing extra ticks.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.log.Info("loop started", slog.Duration("period", l.period))
	for {
		if err := l.Step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			l.log.Info("loop stopped", slog.Uint64("ticks", l.ticks))
			return nil
		case <-ticker.C:
		}
	}
}
