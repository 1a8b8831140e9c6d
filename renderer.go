package frame

// Renderer converts markdown narrative into a display format.
type Renderer interface {
	Render(markdown string) (string, error)
}
