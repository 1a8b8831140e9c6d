package frame

import "context"

// Provider sends one request to a model and streams back its reply.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
