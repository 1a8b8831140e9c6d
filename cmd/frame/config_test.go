package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *viper.Viper {
	v := viper.New()
	v.Set("store", "json")
	v.Set("max-iterations", 10)
	v.Set("max-pairs", 20)
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads values", func(t *testing.T) {
		t.Parallel()
		v := defaults()
		v.Set("root", "site")
		v.Set("orient", []string{"*.html"})
		v.Set("anthropic-api-key", "sk")
		v.Set("log-level", "debug")

		cfg, err := loadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "site", cfg.Root)
		assert.Equal(t, []string{"*.html"}, cfg.Orient)
		assert.Equal(t, "sk", cfg.Keys.Anthropic)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 10, cfg.MaxIterations)
	})

	t.Run("reads the system prompt file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "prompt.md")
		require.NoError(t, os.WriteFile(path, []byte("Be careful."), 0o644))
		v := defaults()
		v.Set("system-prompt", path)

		cfg, err := loadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "Be careful.", cfg.SystemPrompt)
	})

	t.Run("rejects a missing system prompt file", func(t *testing.T) {
		t.Parallel()
		v := defaults()
		v.Set("system-prompt", filepath.Join(t.TempDir(), "missing.md"))
		_, err := loadConfig(v)
		assert.ErrorContains(t, err, "read system prompt")
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		t.Parallel()
		v := defaults()
		v.Set("store", "redis")
		_, err := loadConfig(v)
		assert.ErrorContains(t, err, "unknown store")
	})

	t.Run("rejects non-positive limits", func(t *testing.T) {
		t.Parallel()
		v := defaults()
		v.Set("max-iterations", 0)
		_, err := loadConfig(v)
		assert.Error(t, err)

		v = defaults()
		v.Set("max-pairs", -1)
		_, err = loadConfig(v)
		assert.Error(t, err)
	})
}
