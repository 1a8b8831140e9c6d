package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"

	"github.com/fwojciec/frame"
)

type readArgs struct {
	Filename string `json:"filename"`
}

// ReadTool returns the tool definition for read_file.
func ReadTool() frame.Tool {
	return frame.Tool{
		Name:        "read_file",
		Description: "Read the current content of a file",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"filename": {
					"type": "string",
					"description": "The filename to read"
				}
			},
			"required": ["filename"]
		}`),
	}
}

// ExecuteRead returns the full text of the named file.
func (e *Executor) ExecuteRead(_ context.Context, args json.RawMessage) (*frame.ToolResult, error) {
	var a readArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.Filename == "" {
		return domainError("invalid arguments: filename is required"), nil
	}

	data, err := os.ReadFile(e.path(a.Filename))
	if errors.Is(err, iofs.ErrNotExist) {
		return domainError(fmt.Sprintf("Error reading %s: not found", a.Filename)), nil
	}
	if err != nil {
		return domainError(fmt.Sprintf("Error reading %s: %s", a.Filename, err)), nil
	}
	return textResult(string(data)), nil
}
