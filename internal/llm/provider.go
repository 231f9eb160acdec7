// Package llm sends prompts to hosted or local text-generation providers.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is wrapped in a ProviderError when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response")

// GenerateOptions tunes a single generation call. Zero values defer to the client defaults.
type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider produces text for a prompt. Each call is independent.
type Provider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Close() error
}

// ProviderError reports a failed provider call: transport, authentication or empty output.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
