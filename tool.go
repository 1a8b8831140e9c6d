package frame

import (
	"context"
	"encoding/json"
)

// Tool describes a callable capability to the model. Parameters holds a JSON
// schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolExecutor runs one tool call. A returned error means the executor itself
// failed; a failure the model should see and react to is a ToolResult with
// IsError set.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult is what a tool call produced.
type ToolResult struct {
	Content string
	IsError bool
	// Change describes the side effect for the human, empty when the call
	// had none.
	Change string
}
