package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fwojciec/frame"
)

type listArgs struct {
	Path string `json:"path"`
}

// Entry describes one child of a listed directory.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size *int64 `json:"size"`
}

// ListTool returns the tool definition for list_files.
func ListTool() frame.Tool {
	return frame.Tool{
		Name:        "list_files",
		Description: "List the files and directories directly inside a project directory",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "Directory relative to the project root (defaults to the root)"
				}
			}
		}`),
	}
}

// ExecuteList returns the immediate children of a directory as a JSON array
// sorted by name. Directories have a null size.
func (e *Executor) ExecuteList(_ context.Context, args json.RawMessage) (*frame.ToolResult, error) {
	var a listArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
		}
	}
	name := a.Path
	if name == "" {
		name = "."
	}

	dirents, err := os.ReadDir(e.path(name))
	if err != nil {
		return domainError(fmt.Sprintf("Error listing %s: %s", name, err)), nil
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entry := Entry{Name: d.Name(), Type: "file"}
		if d.IsDir() {
			entry.Type = "directory"
		} else if info, err := d.Info(); err == nil {
			size := info.Size()
			entry.Size = &size
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	out, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	return textResult(string(out)), nil
}
