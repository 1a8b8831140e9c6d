package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/frame"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ frame.Provider = (*Client)(nil)

// Client implements [frame.Provider] for the Google Gemini API.
type Client struct {
	client     *genai.Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID used when a request names none.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [frame.Stream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req frame.Request) (frame.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	config, err := buildConfig(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	seq := c.client.Models.GenerateContentStream(ctx, model, ConvertTurns(req.Turns), config)
	return newStream(ctx, seq), nil
}
