// Package orcerr collects the small set of typed errors the orchestrator
// server uses internally for its own bookkeeping. It deliberately does not
// try to mirror a full distributed-systems error taxonomy (no
// timeout/panic/child-workflow error families): this engine has no replay
// machinery and no transport beyond plain HTTP/JSON, so handler failures
// stay what the protocol says they are -- a bare string carried on the
// wire. These errors never reach the wire themselves; Server.RerunWorkflow
// and Server.completeWorkflow/completeActivity use them only for
// errors.As/errors.Is-based logging, translating them into whatever plain
// protocol-level response their callers expect.
//
// Typical use:
//
//	_, _, err := s.resolveRerunSource(runID)
//	var notTerminal *orcerr.NotTerminalError
//	if errors.As(err, &notTerminal) {
//	    // run hasn't failed (or doesn't exist); reruns only apply to Failed runs
//	}
//
//	if errors.Is(loggedErr, orcerr.ErrAlreadyTerminal) {
//	    // Complete* was invoked twice for the same run
//	}
package orcerr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by id or name finds nothing. Wrap it
// with fmt.Errorf("...: %w", orcerr.ErrNotFound) to add context while
// keeping errors.Is(err, orcerr.ErrNotFound) working.
var ErrNotFound = errors.New("orcerr: not found")

// ErrAlreadyTerminal is returned when an operation tries to move a run out
// of a Succeeded or Failed state.
var ErrAlreadyTerminal = errors.New("orcerr: run already terminal")

// NotTerminalError is returned by rerun handling when the target run's
// latest event isn't Failed (including when the run doesn't exist at all).
type NotTerminalError struct {
	RunID string
}

func (e *NotTerminalError) Error() string {
	return fmt.Sprintf("orcerr: run %s is not a failed, rerunnable run", e.RunID)
}
