package frame

import "errors"

var (
	// ErrValidation marks input rejected before any side effect: a blank
	// command or session id, or a malformed turn.
	ErrValidation = errors.New("validation error")

	// ErrStreamNotReady is returned by Stream.Message before the first Next.
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed is returned by Stream.Next after Close.
	ErrStreamClosed = errors.New("stream closed")

	// ErrUnmatchedToolCall marks a tool call without exactly one result, or a
	// result without a call.
	ErrUnmatchedToolCall = errors.New("unmatched tool call")

	// ErrMaxIterations marks a command stopped by the model call cap.
	ErrMaxIterations = errors.New("max iterations reached")
)
