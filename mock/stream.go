package mock

import (
	"io"

	"github.com/fwojciec/frame"
)

// Interface compliance check.
var _ frame.Stream = (*Stream)(nil)

// Stream is a test double for frame.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because callers commonly defer stream.Close().
type Stream struct {
	NextFn    func() (frame.Event, error)
	StateFn   func() frame.StreamState
	MessageFn func() (frame.Reply, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (frame.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() frame.StreamState {
	if s.StateFn == nil {
		return frame.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (frame.Reply, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ReplyStream returns a Stream that emits events and then completes with
// reply.
func ReplyStream(reply frame.Reply, events ...frame.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (frame.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
		StateFn: func() frame.StreamState {
			if i >= len(events) {
				return frame.StreamStateComplete
			}
			return frame.StreamStateStreaming
		},
		MessageFn: func() (frame.Reply, error) {
			return reply, nil
		},
	}
}
