package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/frame"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// stream implements [frame.Stream] by wrapping the genai SDK's streaming
// iterator. One chunk may carry several parts, so events are queued.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   frame.StreamState
	reply   frame.Reply
	pending []frame.Event
	calls   int
	err     error
}

// Interface compliance check.
var _ frame.Stream = (*stream)(nil)

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: frame.StreamStateNew,
	}
}

func (s *stream) Next() (frame.Event, error) {
	switch s.state {
	case frame.StreamStateComplete:
		return nil, io.EOF
	case frame.StreamStateError:
		return nil, s.err
	case frame.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", frame.ErrStreamClosed)
	}

	for len(s.pending) == 0 {
		chunk, err, ok := s.pull()
		if !ok {
			s.finish()
			if s.state == frame.StreamStateError {
				return nil, s.err
			}
			return nil, io.EOF
		}
		s.state = frame.StreamStateStreaming
		if err != nil {
			s.terminate(fmt.Errorf("gemini: %w", err))
			return nil, s.err
		}
		if err := s.processChunk(chunk); err != nil {
			s.terminate(err)
			return nil, s.err
		}
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
		return frame.Reply{}, fmt.Errorf("gemini: %w", frame.ErrStreamNotReady)
	}
	return s.reply, nil
}

func (s *stream) Close() error {
	if s.state != frame.StreamStateComplete && s.state != frame.StreamStateError {
		s.state = frame.StreamStateClosed
		s.reply.StopReason = frame.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

// finish marks the stream complete. Gemini reports STOP even when it emitted
// function calls, so any call turns the stop reason into tool use.
func (s *stream) finish() {
	if s.state == frame.StreamStateNew && s.ctx.Err() != nil {
		s.terminate(fmt.Errorf("gemini: %w", s.ctx.Err()))
		return
	}
	s.state = frame.StreamStateComplete
	if s.calls > 0 {
		s.reply.StopReason = frame.StopToolUse
		return
	}
	if s.reply.StopReason == "" {
		s.reply.StopReason = frame.StopEndTurn
	}
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

func (s *stream) processChunk(chunk *genai.GenerateContentResponse) error {
	if chunk == nil {
		return nil
	}
	if u := chunk.UsageMetadata; u != nil {
		s.reply.Usage.InputTokens = max(int(u.PromptTokenCount), 0)
		s.reply.Usage.OutputTokens = max(int(u.CandidatesTokenCount), 0)
	}
	if len(chunk.Candidates) == 0 || chunk.Candidates[0] == nil {
		return nil
	}
	cand := chunk.Candidates[0]
	if cand.FinishReason != "" {
		s.reply.RawStopReason = string(cand.FinishReason)
		s.reply.StopReason = mapFinishReason(cand.FinishReason)
	}
	if cand.Content == nil {
		return nil
	}
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if fc := part.FunctionCall; fc != nil {
			if err := s.appendCall(fc); err != nil {
				return err
			}
			continue
		}
		if part.Text != "" {
			s.appendText(part.Text)
		}
	}
	return nil
}

func (s *stream) appendText(delta string) {
	s.pending = append(s.pending, frame.EventTextDelta{Delta: delta})
	if n := len(s.reply.Content); n > 0 {
		if tb, ok := s.reply.Content[n-1].(frame.TextBlock); ok {
			s.reply.Content[n-1] = frame.TextBlock{Text: tb.Text + delta}
			return
		}
	}
	s.reply.Content = append(s.reply.Content, frame.TextBlock{Text: delta})
}

// appendCall records a complete function call. Gemini delivers calls whole
// and does not always assign ids, so a missing id is generated.
func (s *stream) appendCall(fc *genai.FunctionCall) error {
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	args := json.RawMessage("{}")
	if len(fc.Args) > 0 {
		raw, err := json.Marshal(fc.Args)
		if err != nil {
			return fmt.Errorf("gemini: tool call %s: %w", id, err)
		}
		args = raw
	}
	call := frame.ToolCallBlock{ID: id, Name: fc.Name, Arguments: args}
	s.reply.Content = append(s.reply.Content, call)
	s.calls++
	s.pending = append(s.pending,
		frame.EventToolCallBegin{ID: id, Name: fc.Name},
		frame.EventToolCallDelta{ID: id, Delta: string(args)},
		frame.EventToolCallEnd{Call: call},
	)
	return nil
}
