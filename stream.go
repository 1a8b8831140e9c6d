package frame

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving deltas.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream is a pull-based iterator over one model reply. Cancellation flows
// through the context passed to Provider.Stream().
//
// Message() returns the assembled Reply:
//   - StreamStateComplete: complete reply, nil error.
//   - StreamStateError: partial reply with StopReason StopError, or
//     StopAborted when the context was cancelled.
//   - StreamStateStreaming: partial reply, nil error.
//   - StreamStateNew: zero-value reply, ErrStreamNotReady.
//   - StreamStateClosed: partial reply with StopReason StopAborted.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Message() (Reply, error)
	Close() error
}
