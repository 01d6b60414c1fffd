/*
Package scheduler runs commands once per control-loop tick and arbitrates
exclusive ownership of subsystems between them.

Basic Usage:

	sched := scheduler.New(scheduler.Config{
		Name:     "main",
		Disabled: station.Disabled,
		Logger:   logger,
	})

	drive := command.NewSubsystem("drivetrain")
	sched.Register(drive)

	outcome, err := sched.Schedule(command.Run("drive", func() { ... }, drive))
	if err != nil {
		// ownership error: the command is grouped or already active
	}

	for range ticker.C {
		sched.Run()
	}

Arbitration:

Each subsystem has at most one owner. When a newly scheduled command needs a
subsystem that is already owned, the owner's interruption behavior decides:
an owner that yields (CancelSelf) is interrupted and the new command takes
over; an owner that defends (CancelIncoming) keeps running and the new
command is Rejected. Rejection is an outcome, not an error.

Tick Order:

Run calls registered subsystems' periodic hooks, polls the active event loop,
then executes every active command in schedule order. Commands that finish,
or that must stop because the robot is disabled, are ended after the pass.
Default commands then start on freed subsystems, requests raised by command
callbacks during the tick are applied in order, and finally every registered
subsystem still unowned gets its default command.

Concurrency:

A Scheduler belongs to the control loop goroutine. It holds no locks and
must not be shared. Other goroutines talk to it through channels drained
on the control thread, as the dashboard package does for remote cancels.
*/
package scheduler
