package protocol

import "github.com/jayy-lmao/flimsy-execution-engine/internal/ids"

// RerunWorkflowRequest is the body of POST /rerun_workflow. It is a plain
// JSON object, not a tagged-union envelope -- there is only one request
// shape for this endpoint.
type RerunWorkflowRequest struct {
	WorkflowRunID ids.WorkflowRunID `json:"workflow_run_id"`
}

// RerunWorkflowResponse is the body returned by POST /rerun_workflow.
// Exactly one of NewWorkflowID/Error is set. The field is named
// new_workflow_id on the wire even though the value is a run id, matching
// the reference engine's response shape.
type RerunWorkflowResponse struct {
	NewWorkflowID *ids.WorkflowRunID `json:"new_workflow_id,omitempty"`
	Error         string             `json:"error,omitempty"`
}
