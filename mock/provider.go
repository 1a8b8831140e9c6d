// Package mock provides test doubles for frame interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/frame"
)

// Interface compliance check.
var _ frame.Provider = (*Provider)(nil)

// Provider is a test double for frame.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req frame.Request) (frame.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req frame.Request) (frame.Stream, error) {
	return p.StreamFn(ctx, req)
}
