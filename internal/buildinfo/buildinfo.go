// Package buildinfo holds version constants reported by the orchestrator's
// /healthz response body and carried in the worker RPC client's
// User-Agent header.
package buildinfo

// Version is this engine's release version. Bumped by hand per release.
const Version = "0.1.0"

// WireProtocolVersion identifies the worker_event/rerun_workflow envelope
// shape. Workers and the server are expected to match; the server does not
// currently reject mismatched clients.
const WireProtocolVersion = "1"
