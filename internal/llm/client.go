package llm

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/pkg/utils"
)

const (
	// MaxInputChars bounds the source text embedded in summary and takeaway prompts.
	MaxInputChars = 8000
	// MaxTakeaways caps the number of entries KeyTakeaways returns.
	MaxTakeaways = 5

	summaryTemperature = 0.5
	summaryMaxTokens   = 1024
	takeawayMaxTokens  = 512
)

// ErrEmptyInput is returned when there is no text to send.
var ErrEmptyInput = errors.New("no text provided")

// Client wraps a Provider with prompt rendering, defaults and logging.
type Client struct {
	provider    Provider
	prompts     *prompt.Builder
	logger      *zap.Logger
	temperature float64
	maxTokens   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for request logging.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = utils.LoggerOrNop(l) }
}

// WithDefaults sets the temperature and token limit used when a call leaves them unset.
func WithDefaults(temperature float64, maxTokens int) ClientOption {
	return func(c *Client) {
		c.temperature = temperature
		c.maxTokens = maxTokens
	}
}

// NewClient returns a Client for p. A nil builder uses the built-in templates.
func NewClient(p Provider, prompts *prompt.Builder, opts ...ClientOption) *Client {
	if prompts == nil {
		prompts = prompt.NewBuilder()
	}
	c := &Client{
		provider:    p,
		prompts:     prompts,
		logger:      zap.NewNop(),
		temperature: 0.3,
		maxTokens:   4000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prompts returns the template builder used by the client.
func (c *Client) Prompts() *prompt.Builder { return c.prompts }

// ProviderName returns the name of the configured provider.
func (c *Client) ProviderName() string { return c.provider.Name() }

// Model returns the default model of the configured provider.
func (c *Client) Model() string { return c.provider.DefaultModel() }

// Generate sends prompt to the provider. Transport failures and blank answers are
// returned as *ProviderError. The answer is trimmed.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if opts.Model == "" {
		opts.Model = c.provider.DefaultModel()
	}
	if opts.Temperature <= 0 {
		opts.Temperature = c.temperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = c.maxTokens
	}

	reqID := uuid.NewString()
	log := c.logger.With(
		zap.String("req_id", reqID),
		zap.String("provider", c.provider.Name()),
		zap.String("model", opts.Model))
	log.Debug("generate request", zap.Int("prompt_chars", len(prompt)), zap.Int("max_tokens", opts.MaxTokens))

	start := time.Now()
	out, err := c.provider.Generate(ctx, prompt, opts)
	latency := time.Since(start)
	if err != nil {
		log.Warn("generate failed", zap.Duration("latency", latency), zap.Error(err))
		return "", &ProviderError{Provider: c.provider.Name(), Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		log.Warn("generate returned empty response", zap.Duration("latency", latency))
		return "", &ProviderError{Provider: c.provider.Name(), Err: ErrEmptyResponse}
	}
	log.Info("generate completed", zap.Duration("latency", latency), zap.Int("response_chars", len(out)))
	return out, nil
}

// Render renders a named template and sends the result to the provider.
func (c *Client) Render(ctx context.Context, name string, params map[string]string, opts GenerateOptions) (string, error) {
	p, err := c.prompts.Render(name, params)
	if err != nil {
		return "", err
	}
	return c.Generate(ctx, p, opts)
}

// Summarize asks for a summary whose length falls in the word range of band.
func (c *Client) Summarize(ctx context.Context, text string, band models.SummaryLength) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	lo, hi := band.WordRange()
	return c.Render(ctx, prompt.Summary, map[string]string{
		"text":      utils.Head(text, MaxInputChars),
		"min_words": strconv.Itoa(lo),
		"max_words": strconv.Itoa(hi),
	}, GenerateOptions{Temperature: summaryTemperature, MaxTokens: summaryMaxTokens})
}

// KeyTakeaways asks for the most important points of text and returns at most
// MaxTakeaways non-empty lines with list markers removed.
func (c *Client) KeyTakeaways(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	out, err := c.Render(ctx, prompt.Takeaways, map[string]string{
		"text": utils.Head(text, MaxInputChars),
	}, GenerateOptions{Temperature: summaryTemperature, MaxTokens: takeawayMaxTokens})
	if err != nil {
		return nil, err
	}
	return ParseTakeaways(out), nil
}

// listMarker matches leading bullets and enumerations such as "-", "•", "*", "3.", "2)" or "(1)".
// An asterisk counts only when followed by a space, so "**bold**" openers survive.
var listMarker = regexp.MustCompile(`^(?:\s*(?:[-•–]+|\*+(?:\s+|$)|\d+[.)](?:\s+|$)|\(\d+\)))+\s*`)

// ParseTakeaways splits a model answer into at most MaxTakeaways cleaned lines.
func ParseTakeaways(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == MaxTakeaways {
			break
		}
	}
	return out
}

// Close releases provider resources.
func (c *Client) Close() error {
	return c.provider.Close()
}
