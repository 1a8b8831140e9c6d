package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/frame"
)

type editArgs struct {
	Filename string  `json:"filename"`
	Content  *string `json:"content"`
}

// EditTool returns the tool definition for edit_file.
func EditTool() frame.Tool {
	return frame.Tool{
		Name:        "edit_file",
		Description: "Edit or create a file in the project",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"filename": {
					"type": "string",
					"description": "The filename to edit (e.g., 'style.css', 'index.html')"
				},
				"content": {
					"type": "string",
					"description": "The complete new content for the file"
				}
			},
			"required": ["filename", "content"]
		}`),
	}
}

// ExecuteEdit replaces the named file with the given content, creating the
// file if needed. Missing parent directories are not created.
func (e *Executor) ExecuteEdit(_ context.Context, args json.RawMessage) (*frame.ToolResult, error) {
	var a editArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.Filename == "" {
		return domainError("invalid arguments: filename is required"), nil
	}
	if a.Content == nil {
		return domainError("invalid arguments: content is required"), nil
	}

	path := e.path(a.Filename)
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(path, []byte(*a.Content), perm); err != nil {
		msg := fmt.Sprintf("Error modifying %s: %s", a.Filename, err)
		return &frame.ToolResult{Content: msg, IsError: true, Change: msg}, nil
	}

	return &frame.ToolResult{
		Content: fmt.Sprintf("Successfully modified %s", a.Filename),
		Change:  fmt.Sprintf("Modified %s", a.Filename),
	}, nil
}
