// Package metrics defines the orchestrator's Prometheus instrumentation:
// package-level collectors registered once at init via promauto, and small
// record* helpers so callers never touch a *prometheus.CounterVec directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workerEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_worker_events_total",
		Help: "Worker events accepted on /worker_event, by event type.",
	}, []string{"event_type"})

	workflowRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_workflow_runs_total",
		Help: "Workflow runs reaching a terminal state, by status.",
	}, []string{"status"})

	activityRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_activity_runs_total",
		Help: "Activity runs reaching a terminal state, by status.",
	}, []string{"status"})

	rerunTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_rerun_total",
		Help: "Rerun requests, by outcome.",
	}, []string{"outcome"})

	pendingPollLoops = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orchestrator_pending_poll_loops",
		Help: "Long-poll loops currently blocked waiting on a Pending run or a terminal completion.",
	})
)

// RecordWorkerEvent increments the worker-events counter for the given wire
// tag (e.g. "EnqueuWorkflow", "PollActivity").
func RecordWorkerEvent(eventType string) {
	workerEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordWorkflowRun increments the workflow-runs counter for a terminal
// status ("Succeeeded" or "Failed").
func RecordWorkflowRun(status string) {
	workflowRunsTotal.WithLabelValues(status).Inc()
}

// RecordActivityRun increments the activity-runs counter for a terminal
// status ("Succeeeded" or "Failed").
func RecordActivityRun(status string) {
	activityRunsTotal.WithLabelValues(status).Inc()
}

// RecordRerun increments the rerun counter for an outcome ("accepted" or
// "rejected_not_failed").
func RecordRerun(outcome string) {
	rerunTotal.WithLabelValues(outcome).Inc()
}

// PollLoopStarted and PollLoopEnded bracket a long-poll wait so the gauge
// reflects how many goroutines are currently parked in one.
func PollLoopStarted() { pendingPollLoops.Inc() }
func PollLoopEnded()   { pendingPollLoops.Dec() }
