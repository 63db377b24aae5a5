// Package worker implements the Worker runtime: handler registries, the
// per-name long-poll dispatch loops, the WorkflowContext handler-facing
// API, and the RPC Client shared by dispatch and by ExecuteWorkflow. The
// Client pairs a plain *http.Client with one method per RPC.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/buildinfo"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/ids"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
)

var userAgent = fmt.Sprintf("flimsy-execution-engine-worker/%s (wire/%s)", buildinfo.Version, buildinfo.WireProtocolVersion)

// Client is the HTTP JSON RPC client shared by worker dispatch loops and by
// ExecuteWorkflow/ExecuteActivity callers. It owns marshaling of the
// tagged-union wire envelopes; no retry/backoff layer is applied (Non-goals
// exclude advanced retry backoff).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Client targeting the orchestrator server at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) doWorkerEvent(ctx context.Context, event protocol.WorkerEvent) (protocol.ServerEvent, error) {
	body, err := protocol.EncodeWorkerEvent(event)
	if err != nil {
		return nil, fmt.Errorf("worker: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/worker_event", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("worker: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("worker: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worker: server returned %d: %s", resp.StatusCode, raw)
	}

	return protocol.DecodeServerEvent(raw)
}

// RegisterWorkflow registers a workflow handler's name with the server.
func (c *Client) RegisterWorkflow(ctx context.Context, name ids.WorkflowName) error {
	_, err := c.doWorkerEvent(ctx, protocol.RegisterWorkflowEvent{Name: name})
	return err
}

// RegisterActivity registers an activity handler's name with the server.
func (c *Client) RegisterActivity(ctx context.Context, name ids.ActivityName) error {
	_, err := c.doWorkerEvent(ctx, protocol.RegisterActivityEvent{Name: name})
	return err
}

// EnqueueWorkflow requests a new workflow run.
func (c *Client) EnqueueWorkflow(ctx context.Context, event protocol.EnqueueWorkflowEvent) error {
	_, err := c.doWorkerEvent(ctx, event)
	return err
}

// EnqueueActivity requests a new activity run.
func (c *Client) EnqueueActivity(ctx context.Context, event protocol.EnqueueActivityEvent) error {
	_, err := c.doWorkerEvent(ctx, event)
	return err
}

// PollWorkflow long-polls until a Pending workflow run of name is claimed.
func (c *Client) PollWorkflow(ctx context.Context, name ids.WorkflowName) (protocol.PollWorkflowResponse, error) {
	resp, err := c.doWorkerEvent(ctx, protocol.PollWorkflowEvent{Name: name})
	if err != nil {
		return protocol.PollWorkflowResponse{}, err
	}
	poll, ok := resp.(protocol.PollWorkflowResponse)
	if !ok {
		return protocol.PollWorkflowResponse{}, fmt.Errorf("worker: unexpected response %T for PollWorkflow", resp)
	}
	return poll, nil
}

// PollActivity long-polls until a Pending activity run of name is claimed.
func (c *Client) PollActivity(ctx context.Context, name ids.ActivityName) (protocol.PollActivityResponse, error) {
	resp, err := c.doWorkerEvent(ctx, protocol.PollActivityEvent{Name: name})
	if err != nil {
		return protocol.PollActivityResponse{}, err
	}
	poll, ok := resp.(protocol.PollActivityResponse)
	if !ok {
		return protocol.PollActivityResponse{}, fmt.Errorf("worker: unexpected response %T for PollActivity", resp)
	}
	return poll, nil
}

// PollWorkflowCompletion long-polls until runID reaches a terminal state.
func (c *Client) PollWorkflowCompletion(ctx context.Context, runID ids.WorkflowRunID) (protocol.PollWorkflowCompletionResponse, error) {
	resp, err := c.doWorkerEvent(ctx, protocol.PollWorkflowCompletionEvent{WorkflowRunID: runID})
	if err != nil {
		return protocol.PollWorkflowCompletionResponse{}, err
	}
	completion, ok := resp.(protocol.PollWorkflowCompletionResponse)
	if !ok {
		return protocol.PollWorkflowCompletionResponse{}, fmt.Errorf("worker: unexpected response %T for PollWorkflowCompletion", resp)
	}
	return completion, nil
}

// PollActivityCompletion long-polls until runID reaches a terminal state.
func (c *Client) PollActivityCompletion(ctx context.Context, runID ids.ActivityRunID) (protocol.PollActivityCompletionResponse, error) {
	resp, err := c.doWorkerEvent(ctx, protocol.PollActivityCompletionEvent{ActivityRunID: runID})
	if err != nil {
		return protocol.PollActivityCompletionResponse{}, err
	}
	completion, ok := resp.(protocol.PollActivityCompletionResponse)
	if !ok {
		return protocol.PollActivityCompletionResponse{}, fmt.Errorf("worker: unexpected response %T for PollActivityCompletion", resp)
	}
	return completion, nil
}

// CompleteWorkflow reports a workflow handler's outcome.
func (c *Client) CompleteWorkflow(ctx context.Context, event protocol.CompleteWorkflowEvent) error {
	_, err := c.doWorkerEvent(ctx, event)
	return err
}

// CompleteActivity reports an activity handler's outcome.
func (c *Client) CompleteActivity(ctx context.Context, event protocol.CompleteActivityEvent) error {
	_, err := c.doWorkerEvent(ctx, event)
	return err
}

// RerunWorkflow calls POST /rerun_workflow, a plain JSON endpoint outside
// the tagged-union envelope.
func (c *Client) RerunWorkflow(ctx context.Context, runID ids.WorkflowRunID) (protocol.RerunWorkflowResponse, error) {
	body, err := json.Marshal(protocol.RerunWorkflowRequest{WorkflowRunID: runID})
	if err != nil {
		return protocol.RerunWorkflowResponse{}, fmt.Errorf("worker: encode rerun request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerun_workflow", bytes.NewReader(body))
	if err != nil {
		return protocol.RerunWorkflowResponse{}, fmt.Errorf("worker: build rerun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return protocol.RerunWorkflowResponse{}, fmt.Errorf("worker: rerun request failed: %w", err)
	}
	defer resp.Body.Close()

	var out protocol.RerunWorkflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return protocol.RerunWorkflowResponse{}, fmt.Errorf("worker: decode rerun response: %w", err)
	}
	return out, nil
}

// ExecuteWorkflow is the client-facing convenience for driving a workflow
// to completion: it enqueues a fresh run and polls until terminal.
func (c *Client) ExecuteWorkflow(ctx context.Context, name ids.WorkflowName, input string) (string, error) {
	runID := ids.NewWorkflowRunID()
	if err := c.EnqueueWorkflow(ctx, protocol.EnqueueWorkflowEvent{Name: name, Input: input, WorkflowRunID: runID}); err != nil {
		return "", err
	}

	completion, err := c.PollWorkflowCompletion(ctx, runID)
	if err != nil {
		return "", err
	}
	if completion.Error != "" {
		return "", fmt.Errorf("%s", completion.Error)
	}
	return completion.Result, nil
}
