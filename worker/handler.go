package worker

import "context"

// WorkflowHandler is the capability a workflow coordinator implements: a
// declared Name (used for registration, standing in for the reference
// engine's type-name reflection trick) and a Run method composing
// activities through the WorkflowContext it's handed.
type WorkflowHandler interface {
	Name() string
	Run(ctx context.Context, wctx *WorkflowContext, input string) (string, error)
}

// ActivityHandler is the capability a leaf unit of effectful work
// implements.
type ActivityHandler interface {
	Name() string
	Run(ctx context.Context, input string) (string, error)
}
