package worker

import (
	"context"
	"fmt"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
)

// RetryOptions configures how many attempts an activity gets. The server
// does not currently schedule retries beyond the first attempt; this field
// is carried on the wire for a future retry dispatch implementation.
type RetryOptions struct {
	MaxAttempts int64
}

// ActivityOptions configures subsequent ExecuteActivity calls made through
// a WorkflowContext.
type ActivityOptions struct {
	RetryPolicy RetryOptions
}

// DefaultActivityOptions is the zero-configuration activity policy:
// MaxAttempts = 1.
func DefaultActivityOptions() ActivityOptions {
	return ActivityOptions{RetryPolicy: RetryOptions{MaxAttempts: 1}}
}

// WorkflowContext is the handler-facing API a workflow's Run method
// receives. It is strictly scoped to one pollAndProcessWorkflow call: no
// ownership cycle exists even though it holds a *Client shared with the
// rest of the Worker.
type WorkflowContext struct {
	runID           ids.WorkflowRunID
	rerunOf         *ids.WorkflowRunID
	eventCountOrder int64
	activityOptions ActivityOptions
	client          *Client
}

func newWorkflowContext(runID ids.WorkflowRunID, rerunOf *ids.WorkflowRunID, client *Client) *WorkflowContext {
	return &WorkflowContext{
		runID:           runID,
		rerunOf:         rerunOf,
		activityOptions: DefaultActivityOptions(),
		client:          client,
	}
}

// RunID returns the workflow run this context is scoped to.
func (w *WorkflowContext) RunID() ids.WorkflowRunID { return w.runID }

// WithActivityOptions sets the options applied to subsequent ExecuteActivity
// calls and returns the same context for chaining.
func (w *WorkflowContext) WithActivityOptions(opts ActivityOptions) *WorkflowContext {
	w.activityOptions = opts
	return w
}

// ExecuteActivity enqueues handler with input and blocks the calling
// goroutine until the activity reaches a terminal state, returning its
// result or its error.
func (w *WorkflowContext) ExecuteActivity(ctx context.Context, handler ActivityHandler, input string) (string, error) {
	w.eventCountOrder++

	activityRunID := ids.NewActivityRunID()
	name := ids.ActivityName(handler.Name())
	maxAttempts := w.activityOptions.RetryPolicy.MaxAttempts

	err := w.client.EnqueueActivity(ctx, protocol.EnqueueActivityEvent{
		Name: name, Input: input, ActivityRunID: activityRunID, WorkflowRunID: w.runID, MaxAttempts: maxAttempts,
	})
	if err != nil {
		return "", err
	}

	completion, err := w.client.PollActivityCompletion(ctx, activityRunID)
	if err != nil {
		return "", err
	}
	if completion.Error != "" {
		return "", fmt.Errorf("%s", completion.Error)
	}
	return completion.Result, nil
}
