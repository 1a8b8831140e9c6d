package mock

import "github.com/fwojciec/frame"

// Interface compliance check.
var _ frame.Renderer = (*Renderer)(nil)

// Renderer is a test double for frame.Renderer.
type Renderer struct {
	RenderFn func(markdown string) (string, error)
}

// Render delegates to RenderFn.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.RenderFn(markdown)
}
