package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/frame"
	openai "github.com/sashabaranov/go-openai"
)

// Interface compliance check.
var _ frame.Provider = (*Client)(nil)

// Client implements [frame.Provider] for the OpenAI Chat Completions API.
type Client struct {
	client *openai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client, *openai.ClientConfig)

// WithModel sets the model ID used when a request names none.
func WithModel(model string) Option {
	return func(c *Client, _ *openai.ClientConfig) { c.model = model }
}

// WithBaseURL sets the API base URL, e.g. for a compatible gateway or an
// httptest server.
func WithBaseURL(url string) Option {
	return func(_ *Client, cfg *openai.ClientConfig) { cfg.BaseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(_ *Client, cfg *openai.ClientConfig) { cfg.HTTPClient = hc }
}

// New creates a new OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := openai.DefaultConfig(apiKey)
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c, &cfg)
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c
}

// Stream starts a streaming chat completion.
func (c *Client) Stream(ctx context.Context, req frame.Request) (frame.Stream, error) {
	chatReq, err := buildRequest(req, c.model)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	src, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return newStream(ctx, src), nil
}
