// Package metrics provides Prometheus instrumentation for robocmd components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "robocmd"

// Registry holds all metric instances for robocmd components.
type Registry struct {
	// Scheduler Metrics
	CommandsScheduled   *prometheus.CounterVec
	CommandsFinished    *prometheus.CounterVec
	CommandsInterrupted *prometheus.CounterVec
	SchedulesRejected   *prometheus.CounterVec
	ActiveCommands      *prometheus.GaugeVec
	TickDuration        *prometheus.HistogramVec

	// Control Loop Metrics
	LoopTicks    *prometheus.CounterVec
	LoopOverruns *prometheus.CounterVec
	LoopMode     *prometheus.GaugeVec

	// Dashboard Metrics
	DashboardPublishes *prometheus.CounterVec
	DashboardErrors    *prometheus.CounterVec
	DashboardCancels   *prometheus.CounterVec

	// Worker Pool Metrics
	WorkerPoolSize      *prometheus.GaugeVec
	WorkerPoolQueued    *prometheus.GaugeVec
	WorkerPoolCompleted *prometheus.CounterVec
	WorkerPoolDropped   *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg, DefaultNamespace)
}

func newRegistry(reg prometheus.Registerer, ns string) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Scheduler Metrics
		CommandsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "commands_scheduled_total",
				Help:      "Total number of commands that became active",
			},
			[]string{"scheduler_name"},
		),

		CommandsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "commands_finished_total",
				Help:      "Total number of commands that ended normally",
			},
			[]string{"scheduler_name"},
		),

		CommandsInterrupted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "commands_interrupted_total",
				Help:      "Total number of commands canceled, displaced or stopped by disable",
			},
			[]string{"scheduler_name"},
		),

		SchedulesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "schedules_rejected_total",
				Help:      "Total number of schedule requests rejected without a state change",
			},
			[]string{"scheduler_name", "reason"},
		),

		ActiveCommands: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "active_commands",
				Help:      "Number of currently active commands",
			},
			[]string{"scheduler_name"},
		),

		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "tick_duration_seconds",
				Help:      "Time spent in one scheduler pass",
				Buckets:   []float64{.0005, .001, .002, .005, .01, .02, .05, .1},
			},
			[]string{"scheduler_name"},
		),

		// Control Loop Metrics
		LoopTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "ticks_total",
				Help:      "Total number of control loop iterations",
			},
			[]string{"loop_name"},
		),

		LoopOverruns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "overruns_total",
				Help:      "Total number of iterations that took longer than the loop period",
			},
			[]string{"loop_name"},
		),

		LoopMode: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "mode",
				Help:      "Current robot mode (1 for the active mode label, 0 otherwise)",
			},
			[]string{"loop_name", "mode"},
		),

		// Dashboard Metrics
		DashboardPublishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "dashboard",
				Name:      "publishes_total",
				Help:      "Total number of scheduler snapshots published",
			},
			[]string{"dashboard_name"},
		),

		DashboardErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "dashboard",
				Name:      "errors_total",
				Help:      "Total number of failed dashboard operations",
			},
			[]string{"dashboard_name", "operation"},
		),

		DashboardCancels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "dashboard",
				Name:      "cancels_total",
				Help:      "Total number of commands canceled from the dashboard",
			},
			[]string{"dashboard_name"},
		),

		// Worker Pool Metrics
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		WorkerPoolCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "completed_total",
				Help:      "Total number of tasks completed",
			},
			[]string{"pool_name"},
		),

		WorkerPoolDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "dropped_total",
				Help:      "Total number of tasks rejected because the queue was full",
			},
			[]string{"pool_name"},
		),
	}
}
