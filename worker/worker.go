package worker

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
)

// Worker maintains handler registries and drives one long-poll dispatch
// loop per registered name. Reads dominate after startup, so each registry
// gets its own sync.RWMutex, mirroring the reference's reader-writer
// discipline.
type Worker struct {
	client *Client
	log    *slog.Logger

	workflowsMu sync.RWMutex
	workflows   map[ids.WorkflowName]WorkflowHandler

	activitiesMu sync.RWMutex
	activities   map[ids.ActivityName]ActivityHandler
}

// New returns a Worker issuing RPCs through client and logging through log
// (or slog.Default() if nil).
func New(client *Client, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		client:     client,
		log:        log.With("component", "worker"),
		workflows:  make(map[ids.WorkflowName]WorkflowHandler),
		activities: make(map[ids.ActivityName]ActivityHandler),
	}
}

// RegisterWorkflow adds h to the registry under its declared name and sends
// a RegisterWorkflow RPC. Idempotent: re-registering the same name
// overwrites the handler.
func (w *Worker) RegisterWorkflow(ctx context.Context, h WorkflowHandler) error {
	name := ids.WorkflowName(h.Name())
	w.workflowsMu.Lock()
	w.workflows[name] = h
	w.workflowsMu.Unlock()
	return w.client.RegisterWorkflow(ctx, name)
}

// RegisterActivity adds h to the registry under its declared name and sends
// a RegisterActivity RPC.
func (w *Worker) RegisterActivity(ctx context.Context, h ActivityHandler) error {
	name := ids.ActivityName(h.Name())
	w.activitiesMu.Lock()
	w.activities[name] = h
	w.activitiesMu.Unlock()
	return w.client.RegisterActivity(ctx, name)
}

func (w *Worker) workflowHandler(name ids.WorkflowName) (WorkflowHandler, bool) {
	w.workflowsMu.RLock()
	defer w.workflowsMu.RUnlock()
	h, ok := w.workflows[name]
	return h, ok
}

func (w *Worker) activityHandler(name ids.ActivityName) (ActivityHandler, bool) {
	w.activitiesMu.RLock()
	defer w.activitiesMu.RUnlock()
	h, ok := w.activities[name]
	return h, ok
}

// Run spawns one dispatch goroutine per registered workflow and activity
// name and blocks until ctx is cancelled, then returns ctx's error. Poll and
// completion failures inside a dispatch loop are logged, not returned.
func (w *Worker) Run(ctx context.Context) error {
	w.workflowsMu.RLock()
	workflowNames := make([]ids.WorkflowName, 0, len(w.workflows))
	for name := range w.workflows {
		workflowNames = append(workflowNames, name)
	}
	w.workflowsMu.RUnlock()

	w.activitiesMu.RLock()
	activityNames := make([]ids.ActivityName, 0, len(w.activities))
	for name := range w.activities {
		activityNames = append(activityNames, name)
	}
	w.activitiesMu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range workflowNames {
		name := name
		g.Go(func() error {
			for ctx.Err() == nil {
				w.pollAndProcessWorkflow(ctx, name)
			}
			return ctx.Err()
		})
	}
	for _, name := range activityNames {
		name := name
		g.Go(func() error {
			for ctx.Err() == nil {
				w.pollAndProcessActivity(ctx, name)
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}

func (w *Worker) pollAndProcessWorkflow(ctx context.Context, name ids.WorkflowName) {
	poll, err := w.client.PollWorkflow(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Warn("poll workflow failed", "name", name, "error", err)
		return
	}

	handler, ok := w.workflowHandler(name)
	if !ok {
		w.log.Error("no handler registered for polled workflow", "name", name)
		return
	}

	wctx := newWorkflowContext(poll.WorkflowRunID, poll.RerunOfWorkflowRunID, w.client)
	result, runErr := handler.Run(ctx, wctx, poll.Input)

	complete := protocol.CompleteWorkflowEvent{
		WorkflowID:           poll.WorkflowID,
		WorkflowRunID:        poll.WorkflowRunID,
		RerunOfWorkflowRunID: poll.RerunOfWorkflowRunID,
	}
	if runErr != nil {
		complete.Error = runErr.Error()
	} else {
		complete.Result = result
	}

	if err := w.client.CompleteWorkflow(ctx, complete); err != nil {
		w.log.Warn("complete workflow failed", "workflow_run_id", poll.WorkflowRunID, "error", err)
	}
}

func (w *Worker) pollAndProcessActivity(ctx context.Context, name ids.ActivityName) {
	poll, err := w.client.PollActivity(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Warn("poll activity failed", "name", name, "error", err)
		return
	}

	handler, ok := w.activityHandler(name)
	if !ok {
		w.log.Error("no handler registered for polled activity", "name", name)
		return
	}

	result, runErr := handler.Run(ctx, poll.Input)

	complete := protocol.CompleteActivityEvent{
		ActivityID:    poll.ActivityID,
		ActivityRunID: poll.ActivityRunID,
		WorkflowRunID: poll.WorkflowRunID,
		MaxAttempts:   poll.MaxAttempts,
		AttemptNumber: poll.AttemptNumber,
	}
	if runErr != nil {
		complete.Error = runErr.Error()
	} else {
		complete.Result = result
	}

	if err := w.client.CompleteActivity(ctx, complete); err != nil {
		w.log.Warn("complete activity failed", "activity_run_id", poll.ActivityRunID, "error", err)
	}
}
