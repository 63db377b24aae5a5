package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/domain"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/store"
)

func TestRegisterIsIdempotent(t *testing.T) {
	s := store.NewMemoryStore()

	w := domain.Workflow{ID: ids.NewWorkflowID(), Name: "SumAndPrintWorkflow"}
	for i := 0; i < 10; i++ {
		if !s.WorkflowExists(w.Name) {
			s.AddWorkflow(w)
		}
	}

	got, ok := s.GetWorkflowByName(w.Name)
	require.True(t, ok)
	require.Equal(t, w.ID, got.ID)
}

func TestGetFirstPendingWorkflowSkipsNonPendingRuns(t *testing.T) {
	s := store.NewMemoryStore()
	w := domain.Workflow{ID: ids.NewWorkflowID(), Name: "SumAndPrintWorkflow"}
	s.AddWorkflow(w)

	started := ids.NewWorkflowRunID()
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: started, EventType: domain.EventPending,
		Payload: "3", CreatedAt: time.Now(),
	})
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: started, EventType: domain.EventStarted,
		CreatedAt: time.Now().Add(time.Millisecond),
	})

	pending := ids.NewWorkflowRunID()
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: pending, EventType: domain.EventPending,
		Payload: "4", CreatedAt: time.Now().Add(2 * time.Millisecond),
	})

	got, ok := s.GetFirstPendingWorkflow(w.Name)
	require.True(t, ok)
	require.Equal(t, pending, got.RunID)
	require.Equal(t, "4", got.Payload)
}

func TestTerminalExclusivity(t *testing.T) {
	s := store.NewMemoryStore()
	a := domain.Activity{ID: ids.NewActivityID(), Name: "SumActivity"}
	s.AddActivity(a)

	run := ids.NewActivityRunID()
	wfRun := ids.NewWorkflowRunID()
	s.AddActivityEvent(domain.ActivityEvent{
		ActivityID: a.ID, ActivityRunID: run, WorkflowRunID: wfRun,
		EventType: domain.EventPending, Payload: "3", CreatedAt: time.Now(),
		AttemptNumber: 1, MaxAttempts: 1,
	})
	s.AddActivityEvent(domain.ActivityEvent{
		ActivityID: a.ID, ActivityRunID: run, WorkflowRunID: wfRun,
		EventType: domain.EventStarted, CreatedAt: time.Now().Add(time.Millisecond),
		AttemptNumber: 1, MaxAttempts: 1,
	})
	s.AddActivityEvent(domain.ActivityEvent{
		ActivityID: a.ID, ActivityRunID: run, WorkflowRunID: wfRun,
		EventType: domain.EventSucceeded, Payload: "4", CreatedAt: time.Now().Add(2 * time.Millisecond),
		AttemptNumber: 1, MaxAttempts: 1,
	})

	completed, ok := s.GetCompletedActivity(run)
	require.True(t, ok)
	require.Equal(t, domain.EventSucceeded, completed.EventType)
	require.Equal(t, "4", completed.Payload)
}

func TestGetSuccessActivityEventForRunMemoization(t *testing.T) {
	s := store.NewMemoryStore()
	a := domain.Activity{ID: ids.NewActivityID(), Name: "SumActivity"}
	s.AddActivity(a)

	pastWorkflowRun := ids.NewWorkflowRunID()
	run := ids.NewActivityRunID()
	s.AddActivityEvent(domain.ActivityEvent{
		ActivityID: a.ID, ActivityRunID: run, WorkflowRunID: pastWorkflowRun,
		EventType: domain.EventSucceeded, Payload: "3", CreatedAt: time.Now(),
		AttemptNumber: 1, MaxAttempts: 1,
	})

	hit, ok := s.GetSuccessActivityEventForRun(pastWorkflowRun, a.ID, "3")
	require.True(t, ok)
	require.Equal(t, run, hit.ActivityRunID)

	_, ok = s.GetSuccessActivityEventForRun(pastWorkflowRun, a.ID, "different input")
	require.False(t, ok)
}

func TestGetFirstWorkflowRunEventRecoversOriginalInput(t *testing.T) {
	s := store.NewMemoryStore()
	w := domain.Workflow{ID: ids.NewWorkflowID(), Name: "FailyWorkflow"}
	s.AddWorkflow(w)

	run := ids.NewWorkflowRunID()
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: run, EventType: domain.EventPending,
		Payload: "original-input", CreatedAt: time.Now(),
	})
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: run, EventType: domain.EventStarted,
		CreatedAt: time.Now().Add(time.Millisecond),
	})
	s.AddWorkflowEvent(domain.WorkflowEvent{
		WorkflowID: w.ID, RunID: run, EventType: domain.EventFailed,
		Payload: "boom", CreatedAt: time.Now().Add(2 * time.Millisecond),
	})

	first, ok := s.GetFirstWorkflowRunEvent(run)
	require.True(t, ok)
	require.Equal(t, "original-input", first.Payload)

	last, ok := s.GetLastWorkflowRunEvent(run)
	require.True(t, ok)
	require.Equal(t, domain.EventFailed, last.EventType)
}

func TestConcurrentAppendsAndPollsAreRaceFree(t *testing.T) {
	s := store.NewMemoryStore()
	a := domain.Activity{ID: ids.NewActivityID(), Name: "ConcurrentActivity"}
	s.AddActivity(a)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddActivityEvent(domain.ActivityEvent{
				ActivityID: a.ID, ActivityRunID: ids.NewActivityRunID(), WorkflowRunID: ids.NewWorkflowRunID(),
				EventType: domain.EventPending, Payload: "x", CreatedAt: time.Now(),
				AttemptNumber: 1, MaxAttempts: 1,
			})
		}()
		go func() {
			defer wg.Done()
			s.GetFirstPendingActivity(a.Name)
		}()
	}
	wg.Wait()
}
