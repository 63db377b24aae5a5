// Package httpapi adapts internal/orchestrator.Server to net/http, using
// go-chi/chi/v5 for routing. It owns JSON (de)serialization of the
// tagged-union envelopes and the ambient /healthz and /metrics endpoints.
package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/buildinfo"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/orchestrator"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/protocol"
)

// NewRouter builds the orchestrator's HTTP handler around srv.
func NewRouter(srv *orchestrator.Server, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "httpapi")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/worker_event", handleWorkerEvent(srv, log))
	r.Post("/rerun_workflow", handleRerunWorkflow(srv, log))

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Wire-Protocol-Version", buildinfo.WireProtocolVersion)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Status              string `json:"status"`
		Version             string `json:"version"`
		WireProtocolVersion string `json:"wire_protocol_version"`
	}{
		Status:              "ok",
		Version:             buildinfo.Version,
		WireProtocolVersion: buildinfo.WireProtocolVersion,
	})
}

func handleWorkerEvent(srv *orchestrator.Server, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}

		event, err := protocol.DecodeWorkerEvent(body)
		if err != nil {
			log.Warn("malformed worker event", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := srv.Handle(r.Context(), event)
		if err != nil {
			// Long-poll was cancelled by a disconnecting client; nothing to
			// write back.
			return
		}

		encoded, err := protocol.EncodeServerEvent(resp)
		if err != nil {
			log.Error("encoding server event", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(encoded)
	}
}

func handleRerunWorkflow(srv *orchestrator.Server, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.RerunWorkflowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("malformed rerun request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := srv.RerunWorkflow(req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
