package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/frame"
	openai "github.com/sashabaranov/go-openai"
)

// chunkSource is the part of the SDK stream the adapter consumes.
type chunkSource interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// stream implements [frame.Stream] over chat completion chunks. Tool call
// arguments arrive in fragments keyed by index and are assembled when the
// provider ends the stream.
type stream struct {
	src     chunkSource
	ctx     context.Context
	state   frame.StreamState
	reply   frame.Reply
	text    strings.Builder
	calls   []*callState
	pending []frame.Event
	done    bool
	err     error
}

type callState struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

// Interface compliance check.
var _ frame.Stream = (*stream)(nil)

func newStream(ctx context.Context, src chunkSource) *stream {
	return &stream{src: src, ctx: ctx, state: frame.StreamStateNew}
}

func (s *stream) Next() (frame.Event, error) {
	switch s.state {
	case frame.StreamStateComplete:
		return nil, io.EOF
	case frame.StreamStateError:
		return nil, s.err
	case frame.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", frame.ErrStreamClosed)
	}

	for len(s.pending) == 0 {
		if s.done {
			s.state = frame.StreamStateComplete
			return nil, io.EOF
		}
		chunk, err := s.src.Recv()
		s.state = frame.StreamStateStreaming
		if errors.Is(err, io.EOF) {
			if err := s.finish(); err != nil {
				s.terminate(err)
				return nil, s.err
			}
			continue
		}
		if err != nil {
			s.terminate(fmt.Errorf("openai: %w", err))
			return nil, s.err
		}
		s.processChunk(chunk)
	}

	evt := s.pending[0]
	s.pending = s.pending[1:]
	return evt, nil
}

func (s *stream) State() frame.StreamState {
	return s.state
}

func (s *stream) Message() (frame.Reply, error) {
	if s.state == frame.StreamStateNew {
		return frame.Reply{}, fmt.Errorf("openai: %w", frame.ErrStreamNotReady)
	}
	return s.reply, nil
}

func (s *stream) Close() error {
	if s.state != frame.StreamStateComplete && s.state != frame.StreamStateError {
		s.state = frame.StreamStateClosed
		s.reply.StopReason = frame.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	return s.src.Close()
}

func (s *stream) terminate(err error) {
	s.state = frame.StreamStateError
	s.err = err
	if s.ctx.Err() != nil {
		s.reply.StopReason = frame.StopAborted
		s.reply.RawStopReason = "aborted"
		return
	}
	s.reply.StopReason = frame.StopError
	s.reply.RawStopReason = "error"
}

func (s *stream) processChunk(chunk openai.ChatCompletionStreamResponse) {
	if chunk.Usage != nil {
		s.reply.Usage = frame.Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
		}
	}
	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]
	if d := choice.Delta.Content; d != "" {
		s.text.WriteString(d)
		if len(s.reply.Content) == 0 {
			s.reply.Content = append(s.reply.Content, frame.TextBlock{})
		}
		s.reply.Content[0] = frame.TextBlock{Text: s.text.String()}
		s.pending = append(s.pending, frame.EventTextDelta{Delta: d})
	}
	for _, tc := range choice.Delta.ToolCalls {
		s.processToolDelta(tc)
	}
	if choice.FinishReason != "" {
		s.reply.RawStopReason = string(choice.FinishReason)
		s.reply.StopReason = mapFinishReason(choice.FinishReason)
	}
}

func (s *stream) processToolDelta(tc openai.ToolCall) {
	index := 0
	if tc.Index != nil {
		index = *tc.Index
	}
	var cs *callState
	for _, c := range s.calls {
		if c.index == index {
			cs = c
			break
		}
	}
	if cs == nil {
		cs = &callState{index: index}
		s.calls = append(s.calls, cs)
	}
	if tc.ID != "" {
		cs.id = tc.ID
	}
	if tc.Function.Name != "" {
		cs.name = tc.Function.Name
		s.pending = append(s.pending, frame.EventToolCallBegin{ID: cs.id, Name: cs.name})
	}
	if d := tc.Function.Arguments; d != "" {
		cs.args.WriteString(d)
		s.pending = append(s.pending, frame.EventToolCallDelta{ID: cs.id, Delta: d})
	}
}

// finish turns the accumulated fragments into tool call blocks.
func (s *stream) finish() error {
	s.done = true
	for _, cs := range s.calls {
		raw := cs.args.String()
		if raw == "" {
			raw = "{}"
		}
		if !json.Valid([]byte(raw)) {
			return fmt.Errorf("openai: tool call %s has invalid arguments", cs.id)
		}
		call := frame.ToolCallBlock{ID: cs.id, Name: cs.name, Arguments: json.RawMessage(raw)}
		s.reply.Content = append(s.reply.Content, call)
		s.pending = append(s.pending, frame.EventToolCallEnd{Call: call})
	}
	if s.reply.StopReason == "" {
		s.reply.StopReason = frame.StopEndTurn
	}
	return nil
}
