package workerpool

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vnykmshr/robocmd/pkg/common/validation"
	"github.com/vnykmshr/robocmd/pkg/metrics"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is any error that occurred during task execution
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Name labels logs and metrics. Default: "pool".
	Name string

	// Workers is the number of workers in the pool. Default: 1.
	Workers int

	// QueueSize is the maximum number of tasks waiting for a worker.
	// TrySubmit drops tasks once the queue is full. Default: 16.
	QueueSize int

	// TaskTimeout bounds each task's execution. Zero means no timeout.
	TaskTimeout time.Duration

	// OnResult is called from the worker goroutine after each task completes.
	OnResult func(Result)

	// PanicHandler is called when a task panics. The panic is also reported
	// as the task's error.
	PanicHandler func(task Task, recovered interface{})

	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// Pool runs tasks on a fixed set of goroutines. It lets the control loop hand
// off blocking I/O without ever waiting on it.
type Pool struct {
	config Config
	log    *slog.Logger

	taskQueue    chan taskWithContext
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu             sync.RWMutex
	isShutdown     bool
	totalSubmitted int64
	totalCompleted int64
	totalDropped   int64

	workerWg sync.WaitGroup
}

type taskWithContext struct {
	task Task
	ctx  context.Context
}

// New creates a worker pool and starts its workers.
func New(config Config) (*Pool, error) {
	if config.Name == "" {
		config.Name = "pool"
	}
	if config.Workers == 0 {
		config.Workers = 1
	}
	if config.QueueSize == 0 {
		config.QueueSize = 16
	}
	if err := validation.ValidatePositive("workerpool", "workers", config.Workers); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("workerpool", "queue_size", config.QueueSize); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool := &Pool{
		config:     config,
		log:        logger.With(slog.String("pool", config.Name)),
		taskQueue:  make(chan taskWithContext, config.QueueSize),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}

	for i := 0; i < config.Workers; i++ {
		pool.workerWg.Add(1)
		go pool.run(i)
	}

	if m := config.Metrics; m != nil {
		m.WorkerPoolSize.WithLabelValues(config.Name).Set(float64(config.Workers))
		m.WorkerPoolQueued.WithLabelValues(config.Name).Set(0)
	}
	return pool, nil
}
