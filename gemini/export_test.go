package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/frame"
	"google.golang.org/genai"
)

// NewStreamFromIter exposes the stream adapter for tests.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) frame.Stream {
	return newStream(ctx, seq)
}
