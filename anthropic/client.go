package anthropic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/frame"
)

// Interface compliance check.
var _ frame.Provider = (*Client)(nil)

// Client implements [frame.Provider] for the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	opts   []option.RequestOption
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.opts = append(c.opts, option.WithBaseURL(url)) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.opts = append(c.opts, option.WithHTTPClient(hc)) }
}

// WithMaxRetries sets how often the SDK retries failed requests.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.opts = append(c.opts, option.WithMaxRetries(n)) }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{}
	for _, o := range opts {
		o(c)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, c.opts...)
	c.client = anthropic.NewClient(reqOpts...)
	return c
}

// Stream starts a streaming Messages request. Transport errors surface from
// the first Next call.
func (c *Client) Stream(ctx context.Context, req frame.Request) (frame.Stream, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return newStream(ctx, c.client.Messages.NewStreaming(ctx, params)), nil
}
