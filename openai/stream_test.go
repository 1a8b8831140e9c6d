package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/fs"
	"github.com/fwojciec/frame/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, chunks []string, capture chan<- map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			capture <- body
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
			if flusher != nil {
				flusher.Flush()
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func openStream(t *testing.T, baseURL string, req frame.Request) frame.Stream {
	t.Helper()
	client := openai.New("test-key", openai.WithBaseURL(baseURL), openai.WithModel("gpt-test"))
	s, err := client.Stream(context.Background(), req)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collectEvents(t *testing.T, s frame.Stream) []frame.Event {
	t.Helper()
	var events []frame.Event
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func hiRequest() frame.Request {
	return frame.Request{Turns: []frame.Turn{frame.NewTextTurn(frame.RoleHuman, "Hi", testTime)}}
}

func TestStream_Text(t *testing.T) {
	t.Parallel()

	capture := make(chan map[string]any, 1)
	url := sseServer(t, []string{
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":"Hello"}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"},"finish_reason":"stop"}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`,
	}, capture)

	req := hiRequest()
	req.Tools = fs.Tools()
	s := openStream(t, url, req)
	events := collectEvents(t, s)

	assert.Equal(t, []frame.Event{
		frame.EventTextDelta{Delta: "Hello"},
		frame.EventTextDelta{Delta: " world"},
	}, events)
	assert.Equal(t, frame.StreamStateComplete, s.State())

	reply, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, []frame.ContentBlock{frame.TextBlock{Text: "Hello world"}}, reply.Content)
	assert.Equal(t, frame.StopEndTurn, reply.StopReason)
	assert.Equal(t, frame.Usage{InputTokens: 7, OutputTokens: 3}, reply.Usage)

	body := <-capture
	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, float64(4000), body["max_tokens"])
	assert.Equal(t, true, body["stream"])
	assert.Len(t, body["tools"], 3)
}

func TestStream_ToolCallFragments(t *testing.T) {
	t.Parallel()

	url := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"edit_file","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"filename\":\"a\","}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"content\":\"x\"}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"list_files","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	}, nil)

	s := openStream(t, url, hiRequest())
	events := collectEvents(t, s)

	first := frame.ToolCallBlock{ID: "call_1", Name: "edit_file", Arguments: json.RawMessage(`{"filename":"a","content":"x"}`)}
	second := frame.ToolCallBlock{ID: "call_2", Name: "list_files", Arguments: json.RawMessage(`{}`)}
	assert.Equal(t, []frame.Event{
		frame.EventToolCallBegin{ID: "call_1", Name: "edit_file"},
		frame.EventToolCallDelta{ID: "call_1", Delta: `{"filename":"a",`},
		frame.EventToolCallDelta{ID: "call_1", Delta: `"content":"x"}`},
		frame.EventToolCallBegin{ID: "call_2", Name: "list_files"},
		frame.EventToolCallEnd{Call: first},
		frame.EventToolCallEnd{Call: second},
	}, events)

	reply, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, frame.StopToolUse, reply.StopReason)
	assert.Equal(t, "tool_calls", reply.RawStopReason)
	assert.Equal(t, []frame.ContentBlock{first, second}, reply.Content)
}

func TestStream_InvalidToolArguments(t *testing.T) {
	t.Parallel()

	url := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"read_file","arguments":"{\"filename\""}}]},"finish_reason":"tool_calls"}]}`,
	}, nil)

	s := openStream(t, url, hiRequest())
	var err error
	for err == nil {
		_, err = s.Next()
	}
	assert.ErrorContains(t, err, "invalid arguments")
	assert.Equal(t, frame.StreamStateError, s.State())

	reply, msgErr := s.Message()
	require.NoError(t, msgErr)
	assert.Equal(t, frame.StopError, reply.StopReason)
}

func TestStream_LengthStopReason(t *testing.T) {
	t.Parallel()

	url := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"content":"trunc"},"finish_reason":"length"}]}`,
	}, nil)

	s := openStream(t, url, hiRequest())
	collectEvents(t, s)

	reply, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, frame.StopLength, reply.StopReason)
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)

	client := openai.New("test-key", openai.WithBaseURL(srv.URL+"/v1"))
	_, err := client.Stream(context.Background(), hiRequest())
	require.Error(t, err)
	assert.ErrorContains(t, err, "openai:")
}

func TestStream_CloseAbortsMessage(t *testing.T) {
	t.Parallel()

	url := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"content":"a"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"b"},"finish_reason":"stop"}]}`,
	}, nil)

	s := openStream(t, url, hiRequest())
	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Equal(t, frame.StreamStateClosed, s.State())
	reply, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, frame.StopAborted, reply.StopReason)

	_, err = s.Next()
	assert.ErrorIs(t, err, frame.ErrStreamClosed)
}

func TestStream_MessageBeforeNext(t *testing.T) {
	t.Parallel()

	s := openStream(t, sseServer(t, nil, nil), hiRequest())
	_, err := s.Message()
	assert.ErrorIs(t, err, frame.ErrStreamNotReady)
}
