package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/metrics"
)

func TestRecordersDoNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.RecordWorkerEvent("PollActivity")
		metrics.RecordWorkerEvent("PollActivity")
		metrics.RecordWorkflowRun("Succeeeded")
		metrics.RecordActivityRun("Failed")
		metrics.RecordRerun("accepted")
		metrics.RecordRerun("rejected_not_failed")
		metrics.PollLoopStarted()
		metrics.PollLoopEnded()
	})
}
