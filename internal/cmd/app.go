package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/robocmd/internal/config"
	"github.com/vnykmshr/robocmd/internal/demo"
	"github.com/vnykmshr/robocmd/pkg/dashboard"
	"github.com/vnykmshr/robocmd/pkg/logging"
	"github.com/vnykmshr/robocmd/pkg/metrics"
	"github.com/vnykmshr/robocmd/pkg/ratelimit/bucket"
	"github.com/vnykmshr/robocmd/pkg/robot"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	"github.com/vnykmshr/robocmd/pkg/scheduling/workerpool"
	"github.com/vnykmshr/robocmd/pkg/station"
)

// app is one fully wired robot process.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer

	registry   *prometheus.Registry
	metricsSrv *http.Server

	station *station.Station
	sched   *scheduler.Scheduler
	robot   *demo.Robot
	loop    *robot.Loop

	pool  *workerpool.Pool
	redis *redis.Client
	store dashboard.Store
}

// newApp wires every component from cfg. When logOut is non-nil logs go
// there instead of the configured destination.
func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	a := &app{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			_ = a.close()
		}
	}()

	var err error

	lc := logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}
	if logOut != nil {
		a.log = slog.New(logging.NewHandler(logOut, lc))
	} else {
		if a.log, a.logCloser, err = logging.New(lc); err != nil {
			return nil, err
		}
	}

	a.registry = prometheus.NewRegistry()
	reg := metrics.Config{
		Enabled:   cfg.Metrics.Enabled,
		Registry:  a.registry,
		Namespace: cfg.Metrics.Namespace,
	}.New()
	if reg != nil {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		a.metricsSrv = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	initial, err := station.ParseMode(cfg.Station.InitialMode)
	if err != nil {
		return nil, err
	}
	a.station, err = station.New(station.Config{
		InitialMode: initial,
		Schedule:    cfg.StationSchedule(),
		Logger:      a.log,
	})
	if err != nil {
		return nil, err
	}

	a.sched = scheduler.New(scheduler.Config{
		Name:     cfg.Loop.Name,
		Disabled: a.station.Disabled,
		Logger:   a.log,
		Metrics:  reg,
	})

	a.robot, err = demo.New(demo.Config{
		Scheduler: a.sched,
		Period:    cfg.Loop.Period(),
		Logger:    a.log,
	})
	if err != nil {
		return nil, err
	}

	publisher, err := a.buildDashboard(reg)
	if err != nil {
		return nil, err
	}

	var overruns *bucket.Limiter
	if cfg.Loop.OverrunWarningsPerSec > 0 {
		if overruns, err = bucket.New(bucket.Limit(cfg.Loop.OverrunWarningsPerSec), 1); err != nil {
			return nil, err
		}
	}
	a.loop, err = robot.New(robot.Config{
		Name:            cfg.Loop.Name,
		Period:          cfg.Loop.Period(),
		Scheduler:       a.sched,
		Station:         a.station,
		Dashboard:       publisher,
		Hooks:           a.robot.Hooks(),
		OverrunWarnings: overruns,
		Logger:          a.log,
		Metrics:         reg,
	})
	if err != nil {
		return nil, err
	}
	ready = true
	return a, nil
}

func (a *app) buildDashboard(reg *metrics.Registry) (*dashboard.Publisher, error) {
	dc := a.cfg.Dashboard
	if !dc.Enabled {
		return nil, nil
	}

	if dc.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: dc.RedisAddr, DB: dc.RedisDB})
		store, err := dashboard.NewRedisStore(dashboard.RedisConfig{Redis: a.redis, Key: dc.KeyPrefix})
		if err != nil {
			return nil, err
		}
		a.store = store
	} else {
		a.store = dashboard.NewMemoryStore()
	}

	pool, err := workerpool.New(workerpool.Config{
		Name:      "dashboard",
		Workers:   dc.Workers,
		QueueSize: dc.QueueSize,
		Logger:    a.log,
		Metrics:   reg,
	})
	if err != nil {
		return nil, err
	}
	a.pool = pool

	return dashboard.New(dashboard.Config{
		Scheduler:    a.sched,
		Store:        a.store,
		Pool:         a.pool,
		PublishEvery: dc.PublishEveryTicks,
		Mode:         func() string { return a.station.Mode().String() },
		Logger:       a.log,
		Metrics:      reg,
	})
}

// serveMetrics runs the /metrics endpoint until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if a.metricsSrv == nil {
		return
	}
	go func() {
		a.log.Info("metrics listening", slog.String("addr", a.metricsSrv.Addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(shutdownCtx)
	}()
}

// close ends active commands, drains the dashboard pool and releases
// external resources. It is safe on a partially built app.
func (a *app) close() error {
	var errs []error
	if a.sched != nil {
		a.sched.CancelAll()
	}
	if a.pool != nil {
		select {
		case <-a.pool.Shutdown():
		case <-time.After(5 * time.Second):
			errs = append(errs, fmt.Errorf("dashboard pool did not drain"))
		}
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
