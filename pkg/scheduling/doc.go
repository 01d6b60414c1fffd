/*
Package scheduling holds the two halves of robocmd's execution model.

  - scheduler: runs commands once per tick on the control loop and decides
    which command owns each subsystem
  - workerpool: a fixed pool of goroutines for work that must not block a
    tick, such as publishing dashboard snapshots

Scheduler:

	sched := scheduler.New(scheduler.Config{Name: "robot", Disabled: station.Disabled})
	sched.Register(drivetrain, arm)
	sched.Schedule(autonomous)

	for range ticker.C {
		sched.Run()
	}

Worker Pool:

	pool, _ := workerpool.New(workerpool.Config{Workers: 1, QueueSize: 8})
	defer func() { <-pool.Shutdown() }()

	if err := pool.TrySubmit(ctx, task); err != nil {
		// queue full; the control loop moves on
	}

The scheduler is single-threaded by contract. The worker pool is safe for
concurrent use and hands results back through channels the loop drains.
*/
package scheduling
