// Command worker-example wires a Worker against a running orchestrator
// server, registering a small demonstration workflow/activity pair and
// driving one execution to completion. It exists to show the worker
// package's wiring, not as a feature of the orchestrator itself.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/config"
	"github.com/jayy-lmao/flimsy-execution-engine/worker"
)

type sumActivity struct{}

func (sumActivity) Name() string { return "SumActivity" }

func (sumActivity) Run(ctx context.Context, input string) (string, error) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return "", errors.New("input must be an integer")
	}
	return strconv.Itoa(n + 1), nil
}

type sumAndPrintWorkflow struct{}

func (sumAndPrintWorkflow) Name() string { return "SumAndPrintWorkflow" }

func (sumAndPrintWorkflow) Run(ctx context.Context, wctx *worker.WorkflowContext, input string) (string, error) {
	res1, err := wctx.ExecuteActivity(ctx, sumActivity{}, input)
	if err != nil {
		return "", err
	}
	res2, err := wctx.ExecuteActivity(ctx, sumActivity{}, input)
	if err != nil {
		return "", err
	}
	return "Processed " + res1 + ", res_2 " + res2, nil
}

func main() {
	cfg := config.Load()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	client := worker.NewClient("http://" + cfg.Addr)
	w := worker.New(client, log)

	ctx := context.Background()
	if err := w.RegisterActivity(ctx, sumActivity{}); err != nil {
		log.Error("register activity", "error", err)
		os.Exit(1)
	}
	if err := w.RegisterWorkflow(ctx, sumAndPrintWorkflow{}); err != nil {
		log.Error("register workflow", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := w.Run(ctx); err != nil {
			log.Error("worker dispatch loop exited", "error", err)
		}
	}()

	result, err := client.ExecuteWorkflow(ctx, "SumAndPrintWorkflow", "3")
	if err != nil {
		log.Error("workflow execution failed", "error", err)
		os.Exit(1)
	}
	log.Info("workflow execution finished", "result", result)
}
