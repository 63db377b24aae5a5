package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
)

// ServerEvent is the marker interface every response-envelope variant
// implements.
type ServerEvent interface {
	isServerEvent()
}

// PollWorkflowResponse answers a PollWorkflowEvent once a Pending run was
// claimed and moved to Started.
type PollWorkflowResponse struct {
	WorkflowRunID        ids.WorkflowRunID  `json:"workflow_run_id"`
	RerunOfWorkflowRunID *ids.WorkflowRunID `json:"rerun_of_workflow_run_id"`
	WorkflowID           ids.WorkflowID     `json:"workflow_id"`
	Name                 ids.WorkflowName   `json:"name"`
	Input                string             `json:"input"`
}

func (PollWorkflowResponse) isServerEvent() {}

// PollActivityResponse answers a PollActivityEvent once a Pending run was
// claimed and moved to Started.
type PollActivityResponse struct {
	ActivityRunID ids.ActivityRunID `json:"activity_run_id"`
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
	ActivityID    ids.ActivityID    `json:"activity_id"`
	Name          ids.ActivityName  `json:"name"`
	Input         string            `json:"input"`
	MaxAttempts   int64             `json:"max_attempts"`
	AttemptNumber int64             `json:"attempt_number"`
}

func (PollActivityResponse) isServerEvent() {}

// PollWorkflowCompletionResponse answers a PollWorkflowCompletionEvent once
// the run reached a terminal state. At most one of Result/Error is
// non-empty; a run completed with neither reports both as "".
type PollWorkflowCompletionResponse struct {
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
	Result        string            `json:"result"`
	Error         string            `json:"error"`
}

func (PollWorkflowCompletionResponse) isServerEvent() {}

// PollActivityCompletionResponse answers a PollActivityCompletionEvent once
// the run reached a terminal state.
type PollActivityCompletionResponse struct {
	ActivityRunID ids.ActivityRunID `json:"activity_run_id"`
	Result        string            `json:"result"`
	Error         string            `json:"error"`
}

func (PollActivityCompletionResponse) isServerEvent() {}

// GeneralSuccessResponse is returned by every mutating event that has no
// richer reply (Register*, Enqueue*, Complete*).
type GeneralSuccessResponse struct {
	Success bool `json:"success"`
}

func (GeneralSuccessResponse) isServerEvent() {}

// NotFoundResponse is the sole fieldless ServerEvent variant. It encodes as
// the bare JSON string "NotFound", matching serde's default representation
// for a unit enum variant under external tagging.
type NotFoundResponse struct{}

func (NotFoundResponse) isServerEvent() {}

const notFoundWireValue = "NotFound"

var serverEventDecoders = map[string]func(json.RawMessage) (ServerEvent, error){
	"PollWorkflowResponse":   decodeServerInto[PollWorkflowResponse],
	"PollActivityResponse":   decodeServerInto[PollActivityResponse],
	"PollWorkflowCompletion": decodeServerInto[PollWorkflowCompletionResponse],
	"PollActivityCompletion": decodeServerInto[PollActivityCompletionResponse],
	"GeneralSuccess":         decodeServerInto[GeneralSuccessResponse],
}

func decodeServerInto[T ServerEvent](raw json.RawMessage) (ServerEvent, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeServerEvent wraps e in its tagged-union envelope, special-casing
// NotFoundResponse as a bare JSON string rather than a single-key object.
func EncodeServerEvent(e ServerEvent) ([]byte, error) {
	if _, ok := e.(NotFoundResponse); ok {
		return json.Marshal(notFoundWireValue)
	}

	tag, ok := serverEventWireTag(e)
	if !ok {
		return nil, fmt.Errorf("protocol: unknown ServerEvent type %T", e)
	}

	inner, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %T: %w", e, err)
	}
	return json.Marshal(map[string]json.RawMessage{tag: inner})
}

func serverEventWireTag(e ServerEvent) (string, bool) {
	switch e.(type) {
	case PollWorkflowResponse:
		return "PollWorkflowResponse", true
	case PollActivityResponse:
		return "PollActivityResponse", true
	case PollWorkflowCompletionResponse:
		return "PollWorkflowCompletion", true
	case PollActivityCompletionResponse:
		return "PollActivityCompletion", true
	case GeneralSuccessResponse:
		return "GeneralSuccess", true
	default:
		return "", false
	}
}

// DecodeServerEvent unwraps a ServerEvent envelope, handling both the
// single-key object form and the bare-string NotFound form.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var bareString string
	if err := json.Unmarshal(data, &bareString); err == nil {
		if bareString == notFoundWireValue {
			return NotFoundResponse{}, nil
		}
		return nil, fmt.Errorf("protocol: unknown bare server event %q", bareString)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("protocol: malformed server event envelope: %w", err)
	}
	if len(wrapper) != 1 {
		return nil, fmt.Errorf("protocol: server event envelope must have exactly one key, got %d", len(wrapper))
	}
	for tag, raw := range wrapper {
		decode, ok := serverEventDecoders[tag]
		if !ok {
			return nil, fmt.Errorf("protocol: unknown server event tag %q", tag)
		}
		return decode(raw)
	}
	panic("unreachable")
}
