package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Ensure OpenAIProvider implements the interface.
var _ Provider = (*OpenAIProvider)(nil)

const (
	DefaultOpenAIModel = "gpt-3.5-turbo"
	DefaultTimeout     = 120 * time.Second
)

// OpenAIProvider talks to the OpenAI chat completions API or any server that
// implements it.
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the OpenAI API. An empty BaseURL uses the
// public endpoint.
func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	return newChatCompletionProvider("openai", cfg), nil
}

func newChatCompletionProvider(name string, cfg ProviderConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return p.name }

// DefaultModel returns the model used when a call does not name one.
func (p *OpenAIProvider) DefaultModel() string { return p.model }

// Generate sends prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (p *OpenAIProvider) Close() error {
	return nil
}
