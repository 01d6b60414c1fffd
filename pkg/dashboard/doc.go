/*
Package dashboard mirrors scheduler state to an external store and lets
operators cancel running commands from outside the robot.

Every few ticks the Publisher captures a Snapshot on the control loop (the
active commands with their IDs and requirements, and which command owns each
registered subsystem) and hands it to a worker pool. The worker publishes it
to a Store and collects pending cancel requests, which travel back over a
channel and are applied through Scheduler.CancelByID on the next Update.

	pool, _ := workerpool.New(workerpool.Config{Name: "dashboard", Workers: 1})
	store, _ := dashboard.NewRedisStore(dashboard.RedisConfig{Redis: rdb, Key: "robot"})
	pub, _ := dashboard.New(dashboard.Config{
		Scheduler: sched,
		Store:     store,
		Pool:      pool,
	})

	// each tick, after sched.Run()
	pub.Update()

RedisStore keeps the snapshot as JSON under <key>:snapshot, the ownership
table as a hash under <key>:owners, and reads cancel requests from the set
<key>:cancel. MemoryStore does the same in process.
*/
package dashboard
