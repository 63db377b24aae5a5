// Package protocol implements the wire envelopes exchanged between a
// Worker's RPC Client and the orchestrator server's /worker_event and
// /rerun_workflow endpoints. Both request and response sides are closed,
// externally-tagged unions: a single-key JSON object whose key names the
// variant and whose value holds that variant's fields -- the Go
// realization of the reference engine's serde-derived WorkerEvent /
// ServerEvent enums.
//
// Two wire discriminators keep the reference implementation's legacy
// misspellings ("EnqueuWorkflow", "EnqueuActivity") rather than the
// grammatically correct Go identifiers (EnqueueWorkflow, EnqueueActivity)
// they're attached to, preserving byte-compatibility with existing
// callers. The ServerEvent NotFound variant carries no fields and
// so -- matching serde's default representation for a fieldless enum
// variant -- encodes as the bare JSON string "NotFound", not an object.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
)

// WorkerEvent is the marker interface every request-envelope variant
// implements. wireTag reports the single JSON key that variant encodes
// under.
type WorkerEvent interface {
	wireTag() string
}

// RegisterWorkflowEvent registers a workflow handler's name with the
// server. Idempotent.
type RegisterWorkflowEvent struct {
	Name ids.WorkflowName `json:"name"`
}

func (RegisterWorkflowEvent) wireTag() string { return "RegisterWorkflow" }

// RegisterActivityEvent registers an activity handler's name with the
// server. Idempotent.
type RegisterActivityEvent struct {
	Name ids.ActivityName `json:"name"`
}

func (RegisterActivityEvent) wireTag() string { return "RegisterActivity" }

// EnqueueWorkflowEvent requests a new workflow run. The wire discriminator
// is the legacy misspelling "EnqueuWorkflow".
type EnqueueWorkflowEvent struct {
	Name          ids.WorkflowName  `json:"name"`
	Input         string            `json:"input"`
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
}

func (EnqueueWorkflowEvent) wireTag() string { return "EnqueuWorkflow" }

// EnqueueActivityEvent requests a new activity run. The wire discriminator
// is the legacy misspelling "EnqueuActivity".
type EnqueueActivityEvent struct {
	Name          ids.ActivityName  `json:"name"`
	Input         string            `json:"input"`
	ActivityRunID ids.ActivityRunID `json:"activity_run_id"`
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
	MaxAttempts   int64             `json:"max_attempts"`
}

func (EnqueueActivityEvent) wireTag() string { return "EnqueuActivity" }

// CompleteWorkflowEvent reports a workflow handler's outcome. Exactly one
// of Result/Error is expected to be non-empty; both empty defaults to a
// Succeeded event with an empty payload.
type CompleteWorkflowEvent struct {
	Result               string             `json:"result"`
	Error                string             `json:"error"`
	WorkflowID           ids.WorkflowID     `json:"workflow_id"`
	WorkflowRunID        ids.WorkflowRunID  `json:"workflow_run_id"`
	RerunOfWorkflowRunID *ids.WorkflowRunID `json:"rerun_of_workflow_run_id"`
}

func (CompleteWorkflowEvent) wireTag() string { return "CompleteWorkflow" }

// PollWorkflowEvent long-polls for the next Pending run of a workflow.
type PollWorkflowEvent struct {
	Name ids.WorkflowName `json:"name"`
}

func (PollWorkflowEvent) wireTag() string { return "PollWorkflow" }

// PollWorkflowCompletionEvent long-polls until a workflow run reaches a
// terminal state.
type PollWorkflowCompletionEvent struct {
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
}

func (PollWorkflowCompletionEvent) wireTag() string { return "PollWorkflowCompletion" }

// CompleteActivityEvent reports an activity handler's outcome.
type CompleteActivityEvent struct {
	Result        string            `json:"result"`
	Error         string            `json:"error"`
	ActivityID    ids.ActivityID    `json:"activity_id"`
	ActivityRunID ids.ActivityRunID `json:"activity_run_id"`
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
	MaxAttempts   int64             `json:"max_attempts"`
	AttemptNumber int64             `json:"attempt_number"`
}

func (CompleteActivityEvent) wireTag() string { return "CompleteActivity" }

// PollActivityEvent long-polls for the next Pending run of an activity.
type PollActivityEvent struct {
	Name ids.ActivityName `json:"name"`
}

func (PollActivityEvent) wireTag() string { return "PollActivity" }

// PollActivityCompletionEvent long-polls until an activity run reaches a
// terminal state.
type PollActivityCompletionEvent struct {
	ActivityRunID ids.ActivityRunID `json:"activity_run_id"`
}

func (PollActivityCompletionEvent) wireTag() string { return "PollActivityCompletion" }

var workerEventDecoders = map[string]func(json.RawMessage) (WorkerEvent, error){
	"RegisterWorkflow":       decodeInto[RegisterWorkflowEvent],
	"RegisterActivity":       decodeInto[RegisterActivityEvent],
	"EnqueuWorkflow":         decodeInto[EnqueueWorkflowEvent],
	"EnqueuActivity":         decodeInto[EnqueueActivityEvent],
	"CompleteWorkflow":       decodeInto[CompleteWorkflowEvent],
	"PollWorkflow":           decodeInto[PollWorkflowEvent],
	"PollWorkflowCompletion": decodeInto[PollWorkflowCompletionEvent],
	"CompleteActivity":       decodeInto[CompleteActivityEvent],
	"PollActivity":           decodeInto[PollActivityEvent],
	"PollActivityCompletion": decodeInto[PollActivityCompletionEvent],
}

func decodeInto[T WorkerEvent](raw json.RawMessage) (WorkerEvent, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeWorkerEvent wraps e in its single-key tagged-union envelope.
func EncodeWorkerEvent(e WorkerEvent) ([]byte, error) {
	inner, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %T: %w", e, err)
	}
	return json.Marshal(map[string]json.RawMessage{e.wireTag(): inner})
}

// DecodeWorkerEvent unwraps a single-key tagged-union envelope into the
// concrete WorkerEvent variant it names.
func DecodeWorkerEvent(data []byte) (WorkerEvent, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("protocol: malformed worker event envelope: %w", err)
	}
	if len(wrapper) != 1 {
		return nil, fmt.Errorf("protocol: worker event envelope must have exactly one key, got %d", len(wrapper))
	}
	for tag, raw := range wrapper {
		decode, ok := workerEventDecoders[tag]
		if !ok {
			return nil, fmt.Errorf("protocol: unknown worker event tag %q", tag)
		}
		return decode(raw)
	}
	panic("unreachable")
}
