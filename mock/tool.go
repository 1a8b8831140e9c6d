package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/frame"
)

// Interface compliance check.
var _ frame.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor is a test double for frame.ToolExecutor.
// Set ExecuteFn before calling Execute.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) (*frame.ToolResult, error)
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (*frame.ToolResult, error) {
	return e.ExecuteFn(ctx, name, args)
}
