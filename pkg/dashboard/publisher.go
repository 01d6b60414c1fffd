package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vnykmshr/robocmd/pkg/command"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/common/validation"
	"github.com/vnykmshr/robocmd/pkg/metrics"
	"github.com/vnykmshr/robocmd/pkg/ratelimit/bucket"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	"github.com/vnykmshr/robocmd/pkg/scheduling/workerpool"
)

var errCancelBacklog = fmt.Errorf("cancel backlog full: %w", rcerrors.ErrCapacityExceeded)

// Config configures a Publisher.
type Config struct {
	// Name labels logs and metrics. Default: "dashboard".
	Name string

	Scheduler *scheduler.Scheduler
	Store     Store

	// Pool runs Store calls off the control loop. The caller owns it and
	// shuts it down.
	Pool *workerpool.Pool

	// PublishEvery publishes a snapshot every N calls to Update. Default: 10.
	PublishEvery int

	// Mode, if set, labels each snapshot with the robot mode.
	Mode func() string

	// Timeout bounds each publish round. Default: 1s.
	Timeout time.Duration

	// ErrorLimiter rate-limits store error logging. Default: one per second, burst 3.
	ErrorLimiter *bucket.Limiter

	Clock   command.Clock
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// Publisher mirrors the scheduler to a Store and applies cancel requests
// coming back from it. Update runs on the control loop; Store I/O runs on
// the worker pool, and cancel requests return through a channel drained by
// the next Update.
type Publisher struct {
	name     string
	sched    *scheduler.Scheduler
	store    Store
	pool     *workerpool.Pool
	every    uint64
	mode     func() string
	timeout  time.Duration
	limiter  *bucket.Limiter
	clock    command.Clock
	log      *slog.Logger
	metrics  *metrics.Registry
	tick     uint64
	cancelCh chan string
}

// New creates a publisher.
func New(cfg Config) (*Publisher, error) {
	if err := validation.ValidateNotNil("dashboard", "scheduler", cfg.Scheduler); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("dashboard", "store", cfg.Store); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("dashboard", "pool", cfg.Pool); err != nil {
		return nil, err
	}
	if cfg.PublishEvery == 0 {
		cfg.PublishEvery = 10
	}
	if err := validation.ValidatePositive("dashboard", "publish_every", cfg.PublishEvery); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "dashboard"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = command.SystemClock
	}
	if cfg.ErrorLimiter == nil {
		limiter, err := bucket.NewWithConfig(bucket.Config{
			Rate:          bucket.Every(time.Second),
			Burst:         3,
			Clock:         cfg.Clock,
			InitialTokens: -1,
		})
		if err != nil {
			return nil, err
		}
		cfg.ErrorLimiter = limiter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Publisher{
		name:     cfg.Name,
		sched:    cfg.Scheduler,
		store:    cfg.Store,
		pool:     cfg.Pool,
		every:    uint64(cfg.PublishEvery),
		mode:     cfg.Mode,
		timeout:  cfg.Timeout,
		limiter:  cfg.ErrorLimiter,
		clock:    cfg.Clock,
		log:      logger.With(slog.String("dashboard", cfg.Name)),
		metrics:  cfg.Metrics,
		cancelCh: make(chan string, 64),
	}, nil
}

// Update applies cancel requests received since the last call and, every
// PublishEvery calls, hands a snapshot to the worker pool. It never blocks.
func (p *Publisher) Update() {
	p.applyCancels()

	p.tick++
	if p.tick%p.every != 0 {
		return
	}

	snap := Capture(p.sched, p.tick, p.clock.Now())
	if p.mode != nil {
		snap.Mode = p.mode()
	}

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return p.sync(ctx, snap)
	})
	if err := p.pool.TrySubmit(context.Background(), task); err != nil {
		p.fail("submit", err)
	}
}

func (p *Publisher) applyCancels() {
	for {
		select {
		case id := <-p.cancelCh:
			if p.sched.CancelByID(id) {
				p.log.Info("command canceled from dashboard", slog.String("command_id", id))
				if p.metrics != nil {
					p.metrics.DashboardCancels.WithLabelValues(p.name).Inc()
				}
			}
		default:
			return
		}
	}
}

// sync runs on a worker: publish, then collect cancel requests.
func (p *Publisher) sync(ctx context.Context, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.store.Publish(ctx, snap); err != nil {
		p.fail("publish", err)
		return err
	}
	if p.metrics != nil {
		p.metrics.DashboardPublishes.WithLabelValues(p.name).Inc()
	}

	ids, err := p.store.CancelRequests(ctx)
	if err != nil {
		p.fail("cancel_requests", err)
		return err
	}
	for _, id := range ids {
		select {
		case p.cancelCh <- id:
		default:
			p.fail("cancel_requests", errCancelBacklog)
		}
	}
	return nil
}

func (p *Publisher) fail(op string, err error) {
	if p.metrics != nil {
		p.metrics.DashboardErrors.WithLabelValues(p.name, op).Inc()
	}
	if p.limiter.Allow() {
		p.log.Warn("dashboard operation failed", slog.String("operation", op), slog.Any("error", err))
	}
}
