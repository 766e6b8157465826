package tool

import (
	"context"
	"encoding/json"
)

// ToolExecutor defines the runtime contract for executable tools.
type ToolExecutor interface {
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}

// ExecutorFunc adapts a plain function to ToolExecutor.
type ExecutorFunc func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

func (f ExecutorFunc) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	return f(ctx, params)
}
