// Package demo is a simulated robot used by the robocmd binary. It has a
// drivetrain, an arm and an intake, a scripted autonomous routine and a
// few sensor triggers, all running against simulated physics.
package demo

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vnykmshr/robocmd/pkg/command"
	"github.com/vnykmshr/robocmd/pkg/robot"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	"github.com/vnykmshr/robocmd/pkg/station"
	"github.com/vnykmshr/robocmd/pkg/trigger"
)

const (
	driveSpeed    = 1.5  // m/s
	armRate       = 90.0 // deg/s
	armTolerance  = 1.0  // deg
	intakeTicks   = 15   // ticks of intaking before a piece is seated
	autoDistance  = 2.0  // m
	autoArmTarget = 90.0 // deg
)

// State is the simulated robot state.
type State struct {
	Position   float64 // m
	Speed      float64 // m/s
	ArmAngle   float64 // deg
	ArmTarget  float64 // deg
	Intaking   bool
	HasPiece   bool
	Ejections  int
	intakeTime int
}

// Config configures a demo robot.
type Config struct {
	Scheduler *scheduler.Scheduler

	// Period is the simulation step. Default: robot.DefaultPeriod.
	Period time.Duration

	Clock  command.Clock
	Logger *slog.Logger
}

// Robot owns the demo subsystems and their commands. Every method runs on
// the control loop goroutine.
type Robot struct {
	Drivetrain *command.Subsystem
	Arm        *command.Subsystem
	Intake     *command.Subsystem

	sched *scheduler.Scheduler
	dt    float64
	clock command.Clock
	log   *slog.Logger
	state State
	auto  command.Command
}

// New builds the demo robot and registers its subsystems with the scheduler.
func New(cfg Config) (*Robot, error) {
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("demo: scheduler is required")
	}
	if cfg.Period <= 0 {
		cfg.Period = robot.DefaultPeriod
	}
	if cfg.Clock == nil {
		cfg.Clock = command.SystemClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Scheduler.Logger()
	}

	r := &Robot{
		Drivetrain: command.NewSubsystem("drivetrain"),
		Arm:        command.NewSubsystem("arm"),
		Intake:     command.NewSubsystem("intake"),
		sched:      cfg.Scheduler,
		dt:         cfg.Period.Seconds(),
		clock:      cfg.Clock,
		log:        logger.With(slog.String("component", "demo")),
	}

	r.Drivetrain.SetPeriodic(r.integrateDrive)
	r.Arm.SetPeriodic(r.integrateArm)
	r.Intake.SetPeriodic(r.integrateIntake)
	r.sched.Register(r.Drivetrain, r.Arm, r.Intake)

	if err := r.Drivetrain.SetDefaultCommand(r.Stop()); err != nil {
		return nil, err
	}
	if err := r.Arm.SetDefaultCommand(r.HoldArm()); err != nil {
		return nil, err
	}

	auto, err := r.Autonomous()
	if err != nil {
		return nil, err
	}
	r.auto = auto

	r.bindTriggers()
	return r, nil
}

// State returns a copy of the simulated state.
func (r *Robot) State() State {
	return r.state
}

// Hooks returns the loop hooks that start and stop the autonomous routine.
func (r *Robot) Hooks() robot.Hooks {
	return robot.Hooks{
		ModeInit: func(mode station.Mode) {
			r.log.Info("mode init", slog.String("mode", mode.String()))
			if mode == station.Autonomous {
				if _, err := r.sched.Schedule(r.auto); err != nil {
					r.log.Warn("autonomous not scheduled", slog.Any("error", err))
				}
			}
		},
		ModeExit: func(mode station.Mode) {
			if mode == station.Autonomous {
				r.sched.Cancel(r.auto)
			}
		},
	}
}

// Stop holds the drivetrain still. It is the drivetrain's default command.
func (r *Robot) Stop() command.Command {
	return command.Run("drivetrain.stop", func() { r.state.Speed = 0 }, r.Drivetrain)
}

// HoldArm keeps the arm at its current target.
func (r *Robot) HoldArm() command.Command {
	return command.Run("arm.hold", func() {}, r.Arm)
}

// DriveDistance drives forward until the robot has covered meters.
func (r *Robot) DriveDistance(meters float64) command.Command {
	var start float64
	return command.New("drivetrain.distance", command.Funcs{
		Initialize: func() { start = r.state.Position },
		Execute:    func() { r.state.Speed = driveSpeed },
		IsFinished: func() bool { return r.state.Position-start >= meters },
		End:        func(bool) { r.state.Speed = 0 },
	}, r.Drivetrain)
}

// MoveArm drives the arm to degrees and finishes once it is there.
func (r *Robot) MoveArm(degrees float64) command.Command {
	return command.New(fmt.Sprintf("arm.to(%.0f)", degrees), command.Funcs{
		Initialize: func() { r.state.ArmTarget = degrees },
		IsFinished: func() bool { return math.Abs(r.state.ArmAngle-degrees) <= armTolerance },
	}, r.Arm)
}

// IntakePiece runs the intake until a piece is seated.
func (r *Robot) IntakePiece() command.Command {
	return command.New("intake.collect", command.Funcs{
		Initialize: func() { r.state.Intaking = true },
		IsFinished: func() bool { return r.state.HasPiece },
		End:        func(bool) { r.state.Intaking = false },
	}, r.Intake)
}

// Eject drops the held piece.
func (r *Robot) Eject() command.Command {
	return command.Instant("intake.eject", func() {
		if r.state.HasPiece {
			r.state.HasPiece = false
			r.state.Ejections++
		}
	}, r.Intake)
}

// Autonomous drives out, raises the arm while collecting a piece, then
// scores it. Incoming commands for its subsystems are rejected until it
// finishes.
func (r *Robot) Autonomous() (command.Command, error) {
	collect, err := command.NewParallel(r.MoveArm(autoArmTarget), r.IntakePiece())
	if err != nil {
		return nil, err
	}
	timed, err := command.WithTimeoutOn(r.clock, collect, 3*time.Second)
	if err != nil {
		return nil, err
	}
	seq, err := command.NewSequential(
		r.DriveDistance(autoDistance),
		timed,
		command.WaitOn(r.clock, 500*time.Millisecond),
		r.Eject(),
		r.MoveArm(0),
	)
	if err != nil {
		return nil, err
	}
	seq.SetName("autonomous")
	guarded, err := command.WithInterruptBehavior(seq, command.CancelIncoming)
	if err != nil {
		return nil, err
	}
	return guarded, nil
}

func (r *Robot) bindTriggers() {
	// A seated piece stows the arm; while autonomous runs the request is
	// rejected and the routine keeps the arm.
	seated := trigger.New(r.sched, func() bool { return r.state.HasPiece }).
		DebounceOn(r.clock, 100*time.Millisecond)
	seated.OnTrue(command.Instant("arm.stow", func() { r.state.ArmTarget = 0 }, r.Arm))
	seated.OnFalse(command.Instant("piece.released", func() {
		r.log.Info("piece released", slog.Int("ejections", r.state.Ejections))
	}))
}

func (r *Robot) integrateDrive() {
	r.state.Position += r.state.Speed * r.dt
}

func (r *Robot) integrateArm() {
	step := armRate * r.dt
	diff := r.state.ArmTarget - r.state.ArmAngle
	if math.Abs(diff) <= step {
		r.state.ArmAngle = r.state.ArmTarget
		return
	}
	r.state.ArmAngle += math.Copysign(step, diff)
}

func (r *Robot) integrateIntake() {
	if !r.state.Intaking || r.state.HasPiece {
		r.state.intakeTime = 0
		return
	}
	r.state.intakeTime++
	if r.state.intakeTime >= intakeTicks {
		r.state.HasPiece = true
	}
}
