// Package metrics provides Prometheus instrumentation for robocmd components.
//
// A *Registry groups every metric the library records. Components accept a
// *Registry in their Config and record nothing when it is nil, so metrics are
// opt-in:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewRegistry(reg)
//	sched := scheduler.New(scheduler.Config{Name: "main", Metrics: m})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// Scheduler:
//
//   - robocmd_scheduler_commands_scheduled_total
//   - robocmd_scheduler_commands_finished_total
//   - robocmd_scheduler_commands_interrupted_total
//   - robocmd_scheduler_schedules_rejected_total{reason}
//   - robocmd_scheduler_active_commands
//   - robocmd_scheduler_tick_duration_seconds
//
// Control loop:
//
//   - robocmd_loop_ticks_total
//   - robocmd_loop_overruns_total
//   - robocmd_loop_mode{mode}
//
// Dashboard and worker pool:
//
//   - robocmd_dashboard_publishes_total, robocmd_dashboard_errors_total{operation},
//     robocmd_dashboard_cancels_total
//   - robocmd_workerpool_size, robocmd_workerpool_queued_tasks,
//     robocmd_workerpool_completed_total, robocmd_workerpool_dropped_total
//
// Rejection reasons are "conflict" (the owner defends its subsystem) and
// "disabled" (the command does not run while disabled).
package metrics
