// Package command defines the unit of work run by the robocmd scheduler and
// the compositions that combine commands into larger behaviors.
//
// # Commands
//
// A Command has a four-step lifecycle driven by its scheduler:
//
//	Initialize()           once, when the command becomes active
//	Execute()              once per tick
//	IsFinished() bool      right after each Execute
//	End(interrupted bool)  exactly once, when the command terminates
//
// Every implementation embeds Base, which carries the command's name, ID,
// requirements, interruption behavior and disabled handling. Most commands
// do not need a new type at all; Func takes the lifecycle as closures:
//
//	drive := command.Run("drive", func() { dt.Arcade(stick.Y(), stick.X()) }, dt)
//	stop := command.Instant("stop", dt.Stop, dt)
//
// # Subsystems
//
// A Subsystem is an exclusive resource token. Commands declare the subsystems
// they need; the scheduler guarantees that at most one active command owns
// each subsystem. A subsystem may name a default command that the scheduler
// starts whenever nothing else owns it.
//
// # Compositions
//
// Compositions own their children. Adding a command to a composition marks it
// grouped for good: it can no longer be scheduled on its own or added to a
// second composition.
//
//	Sequential  children run one after another
//	Parallel    children run together; done when all are done
//	Race        children run together; done when any is done
//	Deadline    children run together; done when the deadline child is done
//	Conditional one of two children, chosen when the composition starts
//	Repeat      restarts its child whenever it finishes
//
// A composition runs while disabled only if all its children do, and yields
// to incoming commands if any child yields.
//
// Decorators such as WithTimeout, Until and AndThen build compositions from
// existing commands:
//
//	auto := command.Must(command.AndThen(
//		command.Must(command.WithTimeout(driveOut, 3*time.Second)),
//		command.Must(command.AlongWith(raiseArm, spinIntake)),
//	))
package command
