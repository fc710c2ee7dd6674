package llm

import (
	"context"
	"errors"
)

// Client sends a single prompt to a generative-text model and returns the
// model's text unchanged.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured: set the provider API key")

// ErrEmptyResponse means the provider answered without any text.
var ErrEmptyResponse = errors.New("llm response empty content")

// PlaceholderClient stands in when no API key is configured so the server can
// still start and render the form.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
