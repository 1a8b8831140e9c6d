package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/frame/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteList(t *testing.T) {
	t.Parallel()

	t.Run("lists root children sorted by name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("12345"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("1"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "css"), 0o755))

		e := fs.NewExecutor(dir)
		result, err := e.Execute(context.Background(), "list_files", json.RawMessage(`{}`))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var entries []fs.Entry
		require.NoError(t, json.Unmarshal([]byte(result.Content), &entries))
		require.Len(t, entries, 3)
		assert.Equal(t, "a.txt", entries[0].Name)
		assert.Equal(t, "file", entries[0].Type)
		require.NotNil(t, entries[0].Size)
		assert.Equal(t, int64(1), *entries[0].Size)
		assert.Equal(t, "b.txt", entries[1].Name)
		assert.Equal(t, int64(5), *entries[1].Size)
		assert.Equal(t, "css", entries[2].Name)
		assert.Equal(t, "directory", entries[2].Type)
		assert.Nil(t, entries[2].Size)
	})

	t.Run("lists a subdirectory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "css"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "x.css"), nil, 0o644))

		e := fs.NewExecutor(dir)
		result, err := e.Execute(context.Background(), "list_files", json.RawMessage(`{"path":"css"}`))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.JSONEq(t, `[{"name":"x.css","type":"file","size":0}]`, result.Content)
	})

	t.Run("accepts missing arguments", func(t *testing.T) {
		t.Parallel()
		e := fs.NewExecutor(t.TempDir())
		result, err := e.Execute(context.Background(), "list_files", nil)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "[]", result.Content)
	})

	t.Run("reports missing directory", func(t *testing.T) {
		t.Parallel()
		e := fs.NewExecutor(t.TempDir())
		result, err := e.Execute(context.Background(), "list_files", json.RawMessage(`{"path":"nope"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "Error listing nope:")
	})

	t.Run("reports file as not a directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))

		e := fs.NewExecutor(dir)
		result, err := e.Execute(context.Background(), "list_files", json.RawMessage(`{"path":"a.txt"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
