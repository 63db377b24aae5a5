// Package orchestrator implements the event-sourced core that backs the
// HTTP surface in internal/httpapi: it applies each WorkerEvent to the
// store, runs the long-poll loops for work dispatch and completion, and
// implements rerun memoization. Grounded on the reference engine's
// server.rs dispatch match, translated into a type switch over the
// protocol.WorkerEvent marker interface.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/config"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/domain"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/metrics"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/orcerr"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/store"
)

// Poll intervals, pinned to the reference engine's constants rather than
// made configurable.
const (
	workflowPollInterval   = time.Duration(config.WorkflowPollInterval) * time.Millisecond
	activityPollInterval   = time.Duration(config.ActivityPollInterval) * time.Millisecond
	completionPollInterval = time.Duration(config.CompletionPollInterval) * time.Millisecond
)

// Server is the event-sourced core driving both server endpoints. It holds
// no HTTP-specific state; internal/httpapi adapts it to net/http.
type Server struct {
	store store.EventStore
	log   *slog.Logger
}

// NewServer returns a Server backed by s, logging through log (or
// slog.Default() if nil).
func NewServer(s store.EventStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: s, log: log.With("component", "server")}
}

// Handle applies a single WorkerEvent and returns its response envelope.
// It returns an error only when ctx is cancelled during a long-poll wait or
// event is not a known WorkerEvent variant.
func (s *Server) Handle(ctx context.Context, event protocol.WorkerEvent) (protocol.ServerEvent, error) {
	switch e := event.(type) {
	case protocol.RegisterWorkflowEvent:
		return s.registerWorkflow(e), nil
	case protocol.RegisterActivityEvent:
		return s.registerActivity(e), nil
	case protocol.EnqueueWorkflowEvent:
		return s.enqueueWorkflow(e), nil
	case protocol.EnqueueActivityEvent:
		return s.enqueueActivity(e), nil
	case protocol.PollWorkflowEvent:
		return s.pollWorkflow(ctx, e)
	case protocol.PollActivityEvent:
		return s.pollActivity(ctx, e)
	case protocol.PollWorkflowCompletionEvent:
		return s.pollWorkflowCompletion(ctx, e)
	case protocol.PollActivityCompletionEvent:
		return s.pollActivityCompletion(ctx, e)
	case protocol.CompleteWorkflowEvent:
		return s.completeWorkflow(e), nil
	case protocol.CompleteActivityEvent:
		return s.completeActivity(e), nil
	default:
		return nil, fmt.Errorf("orchestrator: unhandled worker event %T", event)
	}
}

func (s *Server) registerWorkflow(e protocol.RegisterWorkflowEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("RegisterWorkflow")
	if !s.store.WorkflowExists(e.Name) {
		s.store.AddWorkflow(domain.Workflow{ID: ids.NewWorkflowID(), Name: e.Name})
		s.log.Debug("registered workflow", "name", e.Name)
	}
	return protocol.GeneralSuccessResponse{Success: true}
}

func (s *Server) registerActivity(e protocol.RegisterActivityEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("RegisterActivity")
	if !s.store.ActivityExists(e.Name) {
		s.store.AddActivity(domain.Activity{ID: ids.NewActivityID(), Name: e.Name})
		s.log.Debug("registered activity", "name", e.Name)
	}
	return protocol.GeneralSuccessResponse{Success: true}
}

func (s *Server) enqueueWorkflow(e protocol.EnqueueWorkflowEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("EnqueuWorkflow")
	w, ok := s.store.GetWorkflowByName(e.Name)
	if !ok {
		s.log.Warn("enqueue workflow: unknown name", "name", e.Name)
		return protocol.GeneralSuccessResponse{Success: true}
	}
	s.store.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID,
		RunID:      e.WorkflowRunID,
		EventType:  domain.EventPending,
		Payload:    e.Input,
		CreatedAt:  time.Now(),
	})
	s.log.Debug("enqueued workflow run", "workflow_run_id", e.WorkflowRunID, "name", e.Name)
	return protocol.GeneralSuccessResponse{Success: true}
}

func (s *Server) enqueueActivity(e protocol.EnqueueActivityEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("EnqueuActivity")
	activity, ok := s.store.GetActivityByName(e.Name)
	if !ok {
		s.log.Warn("enqueue activity: unknown name", "name", e.Name)
		return protocol.GeneralSuccessResponse{Success: true}
	}

	// Silently dropped if the parent run can't be loaded: a documented
	// sharp edge, not an explicit NotFound (see spec Open Questions).
	parent, ok := s.store.GetLastWorkflowRunEvent(e.WorkflowRunID)
	if !ok {
		s.log.Warn("enqueue activity: parent workflow run not found", "workflow_run_id", e.WorkflowRunID)
		return protocol.GeneralSuccessResponse{Success: true}
	}

	now := time.Now()
	if parent.RerunOf != nil {
		if hit, ok := s.store.GetSuccessActivityEventForRun(*parent.RerunOf, activity.ID, e.Input); ok {
			s.store.AddActivityEvent(domain.ActivityEvent{
				ActivityID: activity.ID, ActivityRunID: e.ActivityRunID, WorkflowRunID: e.WorkflowRunID,
				EventType: domain.EventSucceeded, Payload: hit.Payload, CreatedAt: now,
				AttemptNumber: 1, MaxAttempts: e.MaxAttempts,
			})
			s.log.Debug("enqueue activity: memoized from past run",
				"activity_run_id", e.ActivityRunID, "past_workflow_run_id", *parent.RerunOf)
			return protocol.GeneralSuccessResponse{Success: true}
		}
	}

	s.store.AddActivityEvent(domain.ActivityEvent{
		ActivityID: activity.ID, ActivityRunID: e.ActivityRunID, WorkflowRunID: e.WorkflowRunID,
		EventType: domain.EventPending, Payload: e.Input, CreatedAt: now,
		AttemptNumber: 1, MaxAttempts: e.MaxAttempts,
	})
	s.log.Debug("enqueued activity run", "activity_run_id", e.ActivityRunID, "name", e.Name)
	return protocol.GeneralSuccessResponse{Success: true}
}

func (s *Server) pollWorkflow(ctx context.Context, e protocol.PollWorkflowEvent) (protocol.ServerEvent, error) {
	metrics.RecordWorkerEvent("PollWorkflow")
	metrics.PollLoopStarted()
	defer metrics.PollLoopEnded()

	for {
		if pending, ok := s.store.GetFirstPendingWorkflow(e.Name); ok {
			workflow, _ := s.store.GetWorkflowByName(e.Name)
			s.store.AddWorkflowEvent(domain.WorkflowEvent{
				WorkflowID: pending.WorkflowID, RunID: pending.RunID,
				EventType: domain.EventStarted, RerunOf: pending.RerunOf, CreatedAt: time.Now(),
			})
			s.log.Debug("started workflow run", "workflow_run_id", pending.RunID, "name", e.Name)
			return protocol.PollWorkflowResponse{
				WorkflowRunID:        pending.RunID,
				RerunOfWorkflowRunID: pending.RerunOf,
				WorkflowID:           workflow.ID,
				Name:                 e.Name,
				Input:                pending.Payload,
			}, nil
		}
		if err := sleep(ctx, workflowPollInterval); err != nil {
			return nil, err
		}
	}
}

func (s *Server) pollActivity(ctx context.Context, e protocol.PollActivityEvent) (protocol.ServerEvent, error) {
	metrics.RecordWorkerEvent("PollActivity")
	metrics.PollLoopStarted()
	defer metrics.PollLoopEnded()

	for {
		if pending, ok := s.store.GetFirstPendingActivity(e.Name); ok {
			activity, _ := s.store.GetActivityByName(e.Name)
			s.store.AddActivityEvent(domain.ActivityEvent{
				ActivityID: pending.ActivityID, ActivityRunID: pending.ActivityRunID, WorkflowRunID: pending.WorkflowRunID,
				EventType: domain.EventStarted, CreatedAt: time.Now(),
				AttemptNumber: pending.AttemptNumber, MaxAttempts: pending.MaxAttempts,
			})
			s.log.Debug("started activity run", "activity_run_id", pending.ActivityRunID, "name", e.Name)
			return protocol.PollActivityResponse{
				ActivityRunID: pending.ActivityRunID,
				WorkflowRunID: pending.WorkflowRunID,
				ActivityID:    activity.ID,
				Name:          e.Name,
				Input:         pending.Payload,
				MaxAttempts:   pending.MaxAttempts,
				AttemptNumber: pending.AttemptNumber,
			}, nil
		}
		if err := sleep(ctx, activityPollInterval); err != nil {
			return nil, err
		}
	}
}

func (s *Server) pollWorkflowCompletion(ctx context.Context, e protocol.PollWorkflowCompletionEvent) (protocol.ServerEvent, error) {
	metrics.RecordWorkerEvent("PollWorkflowCompletion")
	metrics.PollLoopStarted()
	defer metrics.PollLoopEnded()

	for {
		if completed, ok := s.store.GetCompletedWorkflow(e.WorkflowRunID); ok {
			resp := protocol.PollWorkflowCompletionResponse{WorkflowRunID: e.WorkflowRunID}
			if completed.EventType == domain.EventSucceeded {
				resp.Result = completed.Payload
			} else {
				resp.Error = completed.Payload
			}
			return resp, nil
		}
		if err := sleep(ctx, completionPollInterval); err != nil {
			return nil, err
		}
	}
}

func (s *Server) pollActivityCompletion(ctx context.Context, e protocol.PollActivityCompletionEvent) (protocol.ServerEvent, error) {
	metrics.RecordWorkerEvent("PollActivityCompletion")
	metrics.PollLoopStarted()
	defer metrics.PollLoopEnded()

	for {
		if completed, ok := s.store.GetCompletedActivity(e.ActivityRunID); ok {
			resp := protocol.PollActivityCompletionResponse{ActivityRunID: e.ActivityRunID}
			if completed.EventType == domain.EventSucceeded {
				resp.Result = completed.Payload
			} else {
				resp.Error = completed.Payload
			}
			return resp, nil
		}
		if err := sleep(ctx, completionPollInterval); err != nil {
			return nil, err
		}
	}
}

func (s *Server) completeWorkflow(e protocol.CompleteWorkflowEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("CompleteWorkflow")
	if last, ok := s.store.GetLastWorkflowRunEvent(e.WorkflowRunID); ok && last.IsTerminal() {
		s.log.Warn("duplicate workflow completion",
			"error", fmt.Errorf("workflow run %s: %w", e.WorkflowRunID, orcerr.ErrAlreadyTerminal))
	}
	eventType := domain.EventSucceeded
	payload := e.Result
	if e.Error != "" {
		eventType = domain.EventFailed
		payload = e.Error
	}
	s.store.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: e.WorkflowID, RunID: e.WorkflowRunID, EventType: eventType,
		Payload: payload, RerunOf: e.RerunOfWorkflowRunID, CreatedAt: time.Now(),
	})
	metrics.RecordWorkflowRun(string(eventType))
	s.log.Debug("workflow run completed", "workflow_run_id", e.WorkflowRunID, "outcome", string(eventType))
	return protocol.GeneralSuccessResponse{Success: true}
}

func (s *Server) completeActivity(e protocol.CompleteActivityEvent) protocol.ServerEvent {
	metrics.RecordWorkerEvent("CompleteActivity")
	if last, ok := s.store.GetLastActivityRunEvent(e.ActivityRunID); ok && last.IsTerminal() {
		s.log.Warn("duplicate activity completion",
			"error", fmt.Errorf("activity run %s: %w", e.ActivityRunID, orcerr.ErrAlreadyTerminal))
	}
	eventType := domain.EventSucceeded
	payload := e.Result
	if e.Error != "" {
		eventType = domain.EventFailed
		payload = e.Error
	}
	s.store.AddActivityEvent(domain.ActivityEvent{
		ActivityID: e.ActivityID, ActivityRunID: e.ActivityRunID, WorkflowRunID: e.WorkflowRunID,
		EventType: eventType, Payload: payload, CreatedAt: time.Now(),
		AttemptNumber: e.AttemptNumber, MaxAttempts: e.MaxAttempts,
	})
	metrics.RecordActivityRun(string(eventType))
	s.log.Debug("activity run completed", "activity_run_id", e.ActivityRunID, "outcome", string(eventType))
	return protocol.GeneralSuccessResponse{Success: true}
}

// RerunWorkflow implements POST /rerun_workflow: only a run whose latest
// event is Failed may be rerun, from its original (first-event) input.
func (s *Server) RerunWorkflow(req protocol.RerunWorkflowRequest) protocol.RerunWorkflowResponse {
	last, first, err := s.resolveRerunSource(req.WorkflowRunID)
	if err != nil {
		metrics.RecordRerun("rejected_not_failed")
		s.log.Warn("rerun rejected", "workflow_run_id", req.WorkflowRunID, "error", err)
		return protocol.RerunWorkflowResponse{Error: "workflow not found"}
	}

	oldRun := req.WorkflowRunID
	newRun := ids.NewWorkflowRunID()
	s.store.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: last.WorkflowID, RunID: newRun, EventType: domain.EventPending,
		Payload: first.Payload, RerunOf: &oldRun, CreatedAt: time.Now(),
	})
	metrics.RecordRerun("accepted")
	s.log.Debug("rerun accepted", "old_workflow_run_id", oldRun, "new_workflow_run_id", newRun)
	return protocol.RerunWorkflowResponse{NewWorkflowID: &newRun}
}

// resolveRerunSource locates the Failed run a rerun must originate from and
// its first recorded event (the original input to replay). It returns
// *orcerr.NotTerminalError when runID doesn't exist or its latest event
// isn't Failed, and orcerr.ErrNotFound in the situation the reference
// engine treats as impossible -- a run whose latest event exists but whose
// first event is missing.
func (s *Server) resolveRerunSource(runID ids.WorkflowRunID) (domain.WorkflowEvent, domain.WorkflowEvent, error) {
	last, ok := s.store.GetLastWorkflowRunEvent(runID)
	if !ok || last.EventType != domain.EventFailed {
		return domain.WorkflowEvent{}, domain.WorkflowEvent{}, &orcerr.NotTerminalError{RunID: runID.String()}
	}

	first, ok := s.store.GetFirstWorkflowRunEvent(runID)
	if !ok {
		return domain.WorkflowEvent{}, domain.WorkflowEvent{}, fmt.Errorf("rerun %s: first event: %w", runID, orcerr.ErrNotFound)
	}

	return last, first, nil
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
