package workerpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// Submit adds a task to the pool, waiting for queue space until ctx is done.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if err := p.checkSubmit(ctx, task); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case p.taskQueue <- taskWithContext{task: task, ctx: ctx}:
		p.submitted()
		return nil
	case <-p.shutdownCh:
		return fmt.Errorf("cannot submit task: %w", rcerrors.ErrClosed)
	case <-ctx.Done():
		return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	}
}

// TrySubmit adds a task to the pool without blocking. It fails with
// ErrCapacityExceeded when the queue is full, and the task is dropped.
func (p *Pool) TrySubmit(ctx context.Context, task Task) error {
	if err := p.checkSubmit(ctx, task); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case p.taskQueue <- taskWithContext{task: task, ctx: ctx}:
		p.submitted()
		return nil
	default:
		p.mu.Lock()
		p.totalDropped++
		p.mu.Unlock()
		if m := p.config.Metrics; m != nil {
			m.WorkerPoolDropped.WithLabelValues(p.config.Name).Inc()
		}
		return fmt.Errorf("pool %s queue full: %w", p.config.Name, rcerrors.ErrCapacityExceeded)
	}
}

func (p *Pool) checkSubmit(ctx context.Context, task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	p.mu.RLock()
	isShutdown := p.isShutdown
	p.mu.RUnlock()
	if isShutdown {
		return fmt.Errorf("cannot submit task: %w", rcerrors.ErrClosed)
	}

	if ctx != nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
		default:
		}
	}
	return nil
}

func (p *Pool) submitted() {
	p.mu.Lock()
	p.totalSubmitted++
	p.mu.Unlock()
	if m := p.config.Metrics; m != nil {
		m.WorkerPoolQueued.WithLabelValues(p.config.Name).Set(float64(len(p.taskQueue)))
	}
}

// Shutdown stops accepting tasks. Workers finish the queued tasks and exit.
// The returned channel closes when every worker has stopped.
func (p *Pool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		close(p.shutdownCh)

		go func() {
			p.workerWg.Wait()
			close(p.done)
		}()
	})
	return p.done
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.config.Workers
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *Pool) QueueSize() int {
	return len(p.taskQueue)
}

// TotalSubmitted returns the number of tasks accepted by the pool.
func (p *Pool) TotalSubmitted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalSubmitted
}

// TotalCompleted returns the number of tasks that finished executing.
func (p *Pool) TotalCompleted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalCompleted
}

// TotalDropped returns the number of tasks TrySubmit turned away.
func (p *Pool) TotalDropped() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalDropped
}

// run is the main loop for a worker. After shutdown it drains what is
// already queued before returning.
func (p *Pool) run(id int) {
	defer p.workerWg.Done()

	for {
		select {
		case twc := <-p.taskQueue:
			p.executeTask(id, twc)
		case <-p.shutdownCh:
			for {
				select {
				case twc := <-p.taskQueue:
					p.executeTask(id, twc)
				default:
					return
				}
			}
		}
	}
}

// executeTask executes a single task with the provided context.
func (p *Pool) executeTask(id int, twc taskWithContext) {
	start := time.Now()
	var err error

	// Handle panics during task execution
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(twc.task, r)
			}
		}

		result := Result{
			Task:     twc.task,
			Error:    err,
			Duration: time.Since(start),
			WorkerID: id,
		}

		p.mu.Lock()
		p.totalCompleted++
		p.mu.Unlock()

		if m := p.config.Metrics; m != nil {
			m.WorkerPoolCompleted.WithLabelValues(p.config.Name).Inc()
			m.WorkerPoolQueued.WithLabelValues(p.config.Name).Set(float64(len(p.taskQueue)))
		}
		if err != nil {
			p.log.Warn("task failed", slog.Int("worker", id), slog.Any("error", err))
		}
		if p.config.OnResult != nil {
			p.config.OnResult(result)
		}
	}()

	ctx := twc.ctx
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	err = twc.task.Execute(ctx)
}
