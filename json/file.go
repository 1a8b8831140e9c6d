package json

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/frame"
)

// Compile-time interface check.
var _ frame.Backend = (*File)(nil)

// File stores every session in a single JSON document.
type File struct {
	path string
}

// NewFile returns a backend reading and writing path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the session map. A missing file yields an empty map.
func (f *File) Load(_ context.Context) (map[string][]frame.Turn, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return map[string][]frame.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSessions(data)
}

// Save rewrites the file atomically, creating parent directories as needed.
func (f *File) Save(_ context.Context, sessions map[string][]frame.Turn) error {
	data, err := MarshalSessions(sessions)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
