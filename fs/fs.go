// Package fs provides the project file tools: read_file, edit_file, and
// list_files, all resolved against a fixed project root.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/frame"
)

// Compile-time interface check.
var _ frame.ToolExecutor = (*Executor)(nil)

// Executor dispatches tool calls to the file tools. Paths supplied by the
// model are joined to the root and not otherwise confined.
type Executor struct {
	root string
}

// NewExecutor creates an Executor operating on root.
func NewExecutor(root string) *Executor {
	return &Executor{root: root}
}

// Execute dispatches a tool call by name. Unknown tool names return an IsError
// result so the model can self-correct.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) (*frame.ToolResult, error) {
	switch name {
	case "read_file":
		return e.ExecuteRead(ctx, args)
	case "edit_file":
		return e.ExecuteEdit(ctx, args)
	case "list_files":
		return e.ExecuteList(ctx, args)
	default:
		return domainError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

// Tools returns the tool definitions published to the model.
func Tools() []frame.Tool {
	return []frame.Tool{
		ReadTool(),
		EditTool(),
		ListTool(),
	}
}

func (e *Executor) path(name string) string {
	return filepath.Join(e.root, name)
}

func domainError(msg string) *frame.ToolResult {
	return &frame.ToolResult{Content: msg, IsError: true}
}

func textResult(text string) *frame.ToolResult {
	return &frame.ToolResult{Content: text}
}
