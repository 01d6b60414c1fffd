/*
Package workerpool provides a fixed-size pool of goroutines for work that
must not run on the control loop, such as publishing dashboard snapshots to
a remote store.

Basic Usage:

	pool, err := workerpool.New(workerpool.Config{
		Name:      "dashboard",
		Workers:   2,
		QueueSize: 8,
	})
	if err != nil {
		return err
	}
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return store.Publish(ctx, snapshot)
	})

	// Blocks for queue space until ctx is done.
	err = pool.Submit(ctx, task)

	// Never blocks; drops the task when the queue is full.
	err = pool.TrySubmit(ctx, task)

Submission:

TrySubmit is what a tick-driven caller should use: a full queue returns an
error wrapping ErrCapacityExceeded and increments the dropped counter. Submit
waits for space and is meant for callers that can afford to block.

Results:

Each completed task is reported to Config.OnResult from the worker goroutine
that ran it. Errors are also logged at warn level. Panics are recovered,
passed to Config.PanicHandler and reported as the task's error with the
stack trace attached.

Timeouts:

Config.TaskTimeout wraps each task's context with a deadline. Tasks should
watch ctx.Done() for it to have any effect.

Shutdown:

Shutdown stops accepting tasks and lets workers drain the queue. The
returned channel closes when every worker has exited, so

	<-pool.Shutdown()

waits for all queued work. Calling Shutdown again returns the same channel.

Metrics:

With Config.Metrics set the pool reports its size, queue depth, completed
tasks and dropped tasks, labelled by pool name.
*/
package workerpool
