// Package domain holds the entity and event types persisted by the event
// store: Workflow/Activity (the immortal, name-keyed registrations) and
// WorkflowEvent/ActivityEvent (the append-only lifecycle records each run
// accumulates). Nothing in this package is mutated in place; every
// lifecycle step is a new event value.
package domain

import (
	"time"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
)

// Workflow is created lazily on the first RegisterWorkflow for its name and
// lives for the remainder of the process.
type Workflow struct {
	ID   ids.WorkflowID
	Name ids.WorkflowName
}

// Activity is created lazily on the first RegisterActivity for its name.
type Activity struct {
	ID   ids.ActivityID
	Name ids.ActivityName
}

// EventType is the four-state lifecycle shared by workflow and activity
// runs: Pending -> Started -> {Succeeded, Failed}.
type EventType string

const (
	// EventPending marks a run as waiting to be claimed by a poller.
	EventPending EventType = "Pending"
	// EventStarted marks a run as claimed; emitted at most once per attempt.
	EventStarted EventType = "Started"
	// EventSucceeded marks a run's terminal success.
	//
	// The wire byte-value is the original engine's misspelling,
	// "Succeeeded" (three e's), preserved for interop wherever an event
	// type crosses the wire. See internal/protocol.
	EventSucceeded EventType = "Succeeeded"
	// EventFailed marks a run's terminal failure.
	EventFailed EventType = "Failed"
)

// WorkflowEvent is one immutable lifecycle transition for a workflow run.
type WorkflowEvent struct {
	WorkflowID ids.WorkflowID
	RunID      ids.WorkflowRunID
	EventType  EventType
	Payload    string
	// RerunOf is set only when RunID was created by an explicit rerun; it
	// points at the run whose latest event was Failed when the rerun was
	// requested.
	RerunOf   *ids.WorkflowRunID
	CreatedAt time.Time
}

// ActivityEvent is one immutable lifecycle transition for an activity run.
type ActivityEvent struct {
	ActivityID    ids.ActivityID
	ActivityRunID ids.ActivityRunID
	WorkflowRunID ids.WorkflowRunID
	EventType     EventType
	Payload       string
	CreatedAt     time.Time
	AttemptNumber int64
	MaxAttempts   int64
}

// IsTerminal reports whether e is a Succeeded or Failed event.
func (e WorkflowEvent) IsTerminal() bool {
	return e.EventType == EventSucceeded || e.EventType == EventFailed
}

// IsTerminal reports whether e is a Succeeded or Failed event.
func (e ActivityEvent) IsTerminal() bool {
	return e.EventType == EventSucceeded || e.EventType == EventFailed
}
