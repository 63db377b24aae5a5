package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/buildinfo"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/httpapi"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/orchestrator"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := orchestrator.NewServer(store.NewMemoryStore(), nil)
	ts := httptest.NewServer(httpapi.NewRouter(srv, nil))
	t.Cleanup(ts.Close)
	return ts
}

func postWorkerEvent(t *testing.T, ts *httptest.Server, event protocol.WorkerEvent) protocol.ServerEvent {
	t.Helper()
	body, err := protocol.EncodeWorkerEvent(event)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/worker_event", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)

	decoded, err := protocol.DecodeServerEvent(raw.Bytes())
	require.NoError(t, err)
	return decoded
}

func TestHealthzReturnsOK(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, buildinfo.WireProtocolVersion, resp.Header.Get("X-Wire-Protocol-Version"))

	var body struct {
		Status              string `json:"status"`
		Version             string `json:"version"`
		WireProtocolVersion string `json:"wire_protocol_version"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, buildinfo.Version, body.Version)
	require.Equal(t, buildinfo.WireProtocolVersion, body.WireProtocolVersion)
}

func TestMetricsEndpointServesPrometheusExposition(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWorkerEventEndpointRegistersAndEnqueues(t *testing.T) {
	ts := newTestServer(t)

	resp := postWorkerEvent(t, ts, protocol.RegisterWorkflowEvent{Name: "SumAndPrintWorkflow"})
	require.Equal(t, protocol.GeneralSuccessResponse{Success: true}, resp)

	runID := ids.NewWorkflowRunID()
	resp = postWorkerEvent(t, ts, protocol.EnqueueWorkflowEvent{
		Name: "SumAndPrintWorkflow", Input: "3", WorkflowRunID: runID,
	})
	require.Equal(t, protocol.GeneralSuccessResponse{Success: true}, resp)

	resp = postWorkerEvent(t, ts, protocol.PollWorkflowEvent{Name: "SumAndPrintWorkflow"})
	poll, ok := resp.(protocol.PollWorkflowResponse)
	require.True(t, ok)
	require.Equal(t, runID, poll.WorkflowRunID)
	require.Equal(t, "3", poll.Input)
}

func TestWorkerEventEndpointRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/worker_event", "application/json", bytes.NewReader([]byte(`{"Nonsense":{}}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRerunWorkflowEndpointRejectsUnknownRun(t *testing.T) {
	ts := newTestServer(t)

	body, err := json.Marshal(protocol.RerunWorkflowRequest{WorkflowRunID: ids.NewWorkflowRunID()})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/rerun_workflow", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded protocol.RerunWorkflowResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Equal(t, "workflow not found", decoded.Error)
}
