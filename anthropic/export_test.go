package anthropic

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/frame"
)

// BuildParams exposes buildParams for tests.
var BuildParams = buildParams

// fakeSource replays decoded events, then reports err.
type fakeSource struct {
	events []anthropic.MessageStreamEventUnion
	i      int
	err    error
	closed bool
}

func (f *fakeSource) Next() bool {
	if f.i >= len(f.events) {
		return false
	}
	f.i++
	return true
}

func (f *fakeSource) Current() anthropic.MessageStreamEventUnion { return f.events[f.i-1] }
func (f *fakeSource) Err() error                                 { return f.err }
func (f *fakeSource) Close() error                               { f.closed = true; return nil }

// NewTestStream returns a stream replaying raw JSON events followed by err.
func NewTestStream(ctx context.Context, err error, raw ...string) (frame.Stream, error) {
	src := &fakeSource{err: err}
	for _, r := range raw {
		var evt anthropic.MessageStreamEventUnion
		if err := json.Unmarshal([]byte(r), &evt); err != nil {
			return nil, err
		}
		src.events = append(src.events, evt)
	}
	return newStream(ctx, src), nil
}
