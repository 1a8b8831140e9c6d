// Package orientation builds the message that opens every model window: the
// current command together with a fresh snapshot of the project files.
package orientation

import (
	"context"
	"fmt"
	iofs "io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/frame"
)

// DefaultPatterns are the project files included in every snapshot.
var DefaultPatterns = []string{"index.html", "style.css", "server.js", "package.json"}

// File is one project file captured in a snapshot.
type File struct {
	Name    string
	Content string
}

// Snapshot is the state of the project files at one instant.
type Snapshot struct {
	Files []File
}

// Source produces snapshots.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Compile-time interface check.
var _ Source = (*Dir)(nil)

// Dir snapshots the files under a root directory that match a set of
// doublestar patterns.
type Dir struct {
	fsys     iofs.FS
	patterns []string
}

// NewDir returns a Source reading root. With no patterns DefaultPatterns are
// used.
func NewDir(root string, patterns ...string) (*Dir, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid orientation pattern %q: %w", p, frame.ErrValidation)
		}
	}
	return &Dir{fsys: os.DirFS(root), patterns: patterns}, nil
}

// Snapshot reads every regular file matching the patterns, sorted by name.
// Files that disappear or cannot be read between matching and reading are
// skipped.
func (d *Dir) Snapshot(ctx context.Context) (Snapshot, error) {
	seen := make(map[string]bool)
	var names []string
	for _, p := range d.patterns {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		matches, err := doublestar.Glob(d.fsys, p)
		if err != nil {
			return Snapshot{}, fmt.Errorf("glob %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				names = append(names, m)
			}
		}
	}
	sort.Strings(names)

	var snap Snapshot
	for _, name := range names {
		info, err := iofs.Stat(d.fsys, name)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := iofs.ReadFile(d.fsys, name)
		if err != nil {
			continue
		}
		snap.Files = append(snap.Files, File{Name: name, Content: string(data)})
	}
	return snap, nil
}

// Build returns the human turn that opens a window. When command is empty the
// turn only carries the project context; the command follows separately.
func Build(snap Snapshot, command string) frame.Turn {
	var b strings.Builder
	if command != "" {
		fmt.Fprintf(&b, "You are collaborating with a human to build a self-modifying web application. The human has given you this command: %q\n\n", command)
	} else {
		b.WriteString("You are collaborating with a human to build a self-modifying web application. The conversation so far follows this message; the human's latest command is the last message.\n\n")
	}

	b.WriteString("Current project files:\n")
	if len(snap.Files) == 0 {
		b.WriteString("(none)\n")
	}
	for _, f := range snap.Files {
		fmt.Fprintf(&b, "\n=== %s ===\n%s\n", f.Name, f.Content)
	}

	b.WriteString("\nPlease use the available tools to make the necessary changes to fulfill the human's request. You can read files, list directories, edit files, or create new files as needed.")

	return frame.Turn{
		Role:    frame.RoleHuman,
		Content: []frame.ContentBlock{frame.TextBlock{Text: b.String()}},
	}
}
