// Command orchestratord runs the orchestrator's HTTP server: the in-memory
// event store bound to internal/httpapi's chi router.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/lmittmann/tint"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/config"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/httpapi"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/orchestrator"
	"github.com/jayy-lmao/flimsy-execution-engine/internal/store"
)

func main() {
	cfg := config.Load()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	srv := orchestrator.NewServer(store.NewMemoryStore(), log)
	router := httpapi.NewRouter(srv, log)

	log.Info("orchestrator listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
