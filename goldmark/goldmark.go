// Package goldmark renders the agent's markdown narrative with goldmark:
// HTML for the browser and ANSI-styled text for the terminal.
package goldmark

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/frame"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Interface compliance checks.
var (
	_ frame.Renderer = (*HTML)(nil)
	_ frame.Renderer = (*ANSI)(nil)
)

// HTML renders GitHub-flavored markdown to an HTML fragment. Raw HTML in the
// source is escaped unless WithUnsafe is set.
type HTML struct {
	md goldmark.Markdown
}

// HTMLOption configures an HTML renderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	unsafe    bool
	hardWraps bool
}

// WithUnsafe passes raw HTML through.
func WithUnsafe() HTMLOption {
	return func(c *htmlConfig) { c.unsafe = true }
}

// WithHardWraps turns single newlines into <br>.
func WithHardWraps() HTMLOption {
	return func(c *htmlConfig) { c.hardWraps = true }
}

// NewHTML creates an HTML renderer.
func NewHTML(opts ...HTMLOption) *HTML {
	var cfg htmlConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var htmlOpts []renderer.Option
	if cfg.unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if cfg.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	return &HTML{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(htmlOpts...),
	)}
}

// Render converts markdown to HTML.
func (h *HTML) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
