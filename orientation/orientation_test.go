package orientation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/orientation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("reads default project files that exist", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body {}"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

		src, err := orientation.NewDir(dir)
		require.NoError(t, err)
		snap, err := src.Snapshot(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []orientation.File{
			{Name: "index.html", Content: "<html></html>"},
			{Name: "style.css", Content: "body {}"},
		}, snap.Files)
	})

	t.Run("supports recursive patterns without duplicates", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "css", "theme"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "a.css"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "theme", "b.css"), []byte("b"), 0o644))

		src, err := orientation.NewDir(dir, "**/*.css", "css/a.css")
		require.NoError(t, err)
		snap, err := src.Snapshot(context.Background())
		require.NoError(t, err)

		require.Len(t, snap.Files, 2)
		assert.Equal(t, "css/a.css", snap.Files[0].Name)
		assert.Equal(t, "css/theme/b.css", snap.Files[1].Name)
	})

	t.Run("skips directories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "style.css"), 0o755))

		src, err := orientation.NewDir(dir)
		require.NoError(t, err)
		snap, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snap.Files)
	})

	t.Run("reflects changes between snapshots", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "style.css")
		require.NoError(t, os.WriteFile(path, []byte("red"), 0o644))

		src, err := orientation.NewDir(dir)
		require.NoError(t, err)
		first, err := src.Snapshot(context.Background())
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("blue"), 0o644))
		second, err := src.Snapshot(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "red", first.Files[0].Content)
		assert.Equal(t, "blue", second.Files[0].Content)
	})

	t.Run("rejects invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := orientation.NewDir(t.TempDir(), "[")
		assert.ErrorIs(t, err, frame.ErrValidation)
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	snap := orientation.Snapshot{Files: []orientation.File{
		{Name: "style.css", Content: "body { color: red; }"},
	}}

	t.Run("combines command and files", func(t *testing.T) {
		t.Parallel()
		turn := orientation.Build(snap, "make the background blue")
		assert.Equal(t, frame.RoleHuman, turn.Role)
		text := turn.Text()
		assert.Contains(t, text, `"make the background blue"`)
		assert.Contains(t, text, "=== style.css ===\nbody { color: red; }")
		assert.True(t, turn.IsCommand())
	})

	t.Run("omits command when empty", func(t *testing.T) {
		t.Parallel()
		text := orientation.Build(snap, "").Text()
		assert.NotContains(t, text, "given you this command")
		assert.Contains(t, text, "=== style.css ===")
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, orientation.Build(snap, "x"), orientation.Build(snap, "x"))
	})

	t.Run("marks empty snapshot", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, orientation.Build(orientation.Snapshot{}, "x").Text(), "(none)")
	})
}
