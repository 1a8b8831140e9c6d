package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests replace zerolog.DefaultContextLogger and do not run in
// parallel.

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(logConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	zerolog.Ctx(context.Background()).Warn().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	_, err = newLogger(logConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.log")
	var buf bytes.Buffer
	logger, err := newLogger(logConfig{Level: "info", Format: "text", File: path}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

// fakeOpenAI answers every chat completion with the next scripted SSE body.
func fakeOpenAI(t *testing.T, bodies ...[]string) string {
	t.Helper()
	var mu sync.Mutex
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range bodies[call] {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		call++
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func TestRunCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>old</h1>"), 0o644))
	state := filepath.Join(t.TempDir(), "sessions.json")

	editArgs, err := json.Marshal(`{"filename":"index.html","content":"<h1>new</h1>"}`)
	require.NoError(t, err)
	baseURL := fakeOpenAI(t,
		[]string{
			fmt.Sprintf(`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"edit_file","arguments":%s}}]},"finish_reason":"tool_calls"}]}`, editArgs),
		},
		[]string{
			`{"choices":[{"index":0,"delta":{"content":"Updated the **heading**."},"finish_reason":"stop"}]}`,
		},
	)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"run", "change the heading",
		"--session", "t1",
		"--root", root,
		"--state-file", state,
		"--provider", "openai",
		"--api-key", "test-key",
		"--base-url", baseURL,
		"--log-level", "error",
	})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "heading")
	assert.Contains(t, stdout.String(), "Modified index.html")

	data, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>new</h1>", string(data))

	saved, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"t1"`)
}

func TestRunCommand_RequiresArgument(t *testing.T) {
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run"})
	assert.Error(t, cmd.Execute())
}
