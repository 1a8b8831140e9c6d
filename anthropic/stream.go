package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/frame"
)

// eventSource is the part of the SDK's SSE stream the adapter consumes.
type eventSource interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

// stream implements [frame.Stream] over SDK stream events.
type stream struct {
	src    eventSource
	ctx    context.Context
	state  frame.StreamState
	reply  frame.Reply
	blocks map[int]*blockState
	err    error // terminal error, if any
}

// blockState tracks a content block being assembled.
type blockState struct {
	blockType string
	toolID    string
	toolName  string
	input     strings.Builder
	text      strings.Builder
}

// Interface compliance check.
var _ frame.Stream = (*stream)(nil)

func newStream(ctx context.Context, src eventSource) *stream {
	return &stream{
		src:    src,
		ctx:    ctx,
		state:  frame.StreamStateNew,
		blocks: make(map[int]*blockState),
	}
}

// Next returns the next semantic event, or io.EOF once the message is
// complete.
func (s *stream) Next() (frame.Event, error) {
	switch s.state {
	case frame.StreamStateComplete:
		return nil, io.EOF
	case frame.StreamStateError:
		return nil, s.err
	case frame.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", frame.ErrStreamClosed)
	}

	for s.src.Next() {
		s.state = frame.StreamStateStreaming

		evt, err := s.processEvent(s.src.Current())
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if s.state == frame.StreamStateComplete {
			return nil, io.EOF
		}
		if evt != nil {
			return evt, nil
		}
	}

	if err := s.src.Err(); err != nil {
		s.terminate(fmt.Errorf("anthropic: %w", err))
	} else {
		s.terminate(fmt.Errorf("anthropic: unexpected end of stream"))
	}
	return nil, s.err
}

// State returns the current stream state.
func (s *stream) State() frame.StreamState {
	return s.state
}

// Message returns the assembled reply without unfinished blocks.
func (s *stream) Message() (frame.Reply, error) {
	if s.state == frame.StreamStateNew {
		return frame.Reply{}, fmt.Errorf("anthropic: %w", frame.ErrStreamNotReady)
	}
	reply := s.reply
	reply.Content = make([]frame.ContentBlock, 0, len(s.reply.Content))
	for _, b := range s.reply.Content {
		if b != nil {
			reply.Content = append(reply.Content, b)
		}
	}
	return reply, nil
}

// Close releases the underlying response.
func (s *stream) Close() error {
	if s.state != frame.StreamStateComplete && s.state != frame.StreamStateError {
		s.state = frame.StreamStateClosed
		s.reply.StopReason = frame.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	return s.src.Close()
}

// terminate records a terminal error and the matching stop reason.
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

// processEvent folds one SDK event into the reply. It returns nil for events
// with no semantic meaning.
func (s *stream) processEvent(event anthropic.MessageStreamEventUnion) (frame.Event, error) {
	switch e := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		s.reply.Usage.InputTokens = int(e.Message.Usage.InputTokens)
		return nil, nil

	case anthropic.ContentBlockStartEvent:
		idx := int(e.Index)
		bs := &blockState{blockType: e.ContentBlock.Type}
		s.blocks[idx] = bs
		for len(s.reply.Content) <= idx {
			s.reply.Content = append(s.reply.Content, nil)
		}
		switch bs.blockType {
		case "tool_use":
			bs.toolID = e.ContentBlock.ID
			bs.toolName = e.ContentBlock.Name
			s.reply.Content[idx] = frame.ToolCallBlock{ID: bs.toolID, Name: bs.toolName}
			return frame.EventToolCallBegin{ID: bs.toolID, Name: bs.toolName}, nil
		case "text":
			bs.text.WriteString(e.ContentBlock.Text)
			s.reply.Content[idx] = frame.TextBlock{Text: bs.text.String()}
		}
		return nil, nil

	case anthropic.ContentBlockDeltaEvent:
		bs := s.blocks[int(e.Index)]
		if bs == nil {
			return nil, fmt.Errorf("anthropic: delta for unknown block index %d", e.Index)
		}
		switch d := e.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			bs.text.WriteString(d.Text)
			s.reply.Content[e.Index] = frame.TextBlock{Text: bs.text.String()}
			return frame.EventTextDelta{Delta: d.Text}, nil
		case anthropic.InputJSONDelta:
			bs.input.WriteString(d.PartialJSON)
			return frame.EventToolCallDelta{ID: bs.toolID, Delta: d.PartialJSON}, nil
		}
		return nil, nil

	case anthropic.ContentBlockStopEvent:
		bs := s.blocks[int(e.Index)]
		if bs == nil {
			return nil, fmt.Errorf("anthropic: stop for unknown block index %d", e.Index)
		}
		if bs.blockType != "tool_use" {
			return nil, nil
		}
		raw := bs.input.String()
		if raw == "" {
			raw = "{}"
		}
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("anthropic: tool call %s has invalid arguments", bs.toolID)
		}
		call := frame.ToolCallBlock{ID: bs.toolID, Name: bs.toolName, Arguments: json.RawMessage(raw)}
		s.reply.Content[e.Index] = call
		return frame.EventToolCallEnd{Call: call}, nil

	case anthropic.MessageDeltaEvent:
		s.reply.Usage.OutputTokens = int(e.Usage.OutputTokens)
		if e.Delta.StopReason != "" {
			s.reply.RawStopReason = string(e.Delta.StopReason)
			s.reply.StopReason = mapStopReason(s.reply.RawStopReason)
		}
		return nil, nil

	case anthropic.MessageStopEvent:
		s.state = frame.StreamStateComplete
		return nil, nil
	}
	return nil, nil
}
