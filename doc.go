/*
Package robocmd is a command-based framework for robot control loops.

Commands (pkg/command):
  - Command, Base: the Initialize/Execute/IsFinished/End lifecycle
  - Subsystem: exclusive resource tokens with default commands
  - Sequential, Parallel, Race, Deadline, Conditional, Repeat: compositions
  - decorators: WithTimeout, Until, AndThen, AlongWith and friends

Scheduling (pkg/scheduling):
  - scheduler: the per-tick scheduler, ownership arbitration, event loops
  - workerpool: background workers for I/O kept off the control loop

Inputs and outputs:
  - trigger (pkg/trigger): edge-triggered bindings from conditions to commands
  - station (pkg/station): operating mode and the disabled signal
  - robot (pkg/robot): the fixed-period loop tying it all together
  - dashboard (pkg/dashboard): scheduler snapshots mirrored to Redis

Example usage:

	import (
		"github.com/vnykmshr/robocmd/pkg/command"
		"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	)

	arm := command.NewSubsystem("arm")
	sched := scheduler.New(scheduler.Config{})
	sched.Register(arm)

	raise := command.Run("arm.raise", raiseArm, arm)
	sched.Schedule(raise)

	for range ticker.C {
		sched.Run()
	}
*/
package robocmd
