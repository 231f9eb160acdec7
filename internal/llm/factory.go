package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewProvider constructs the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(cfg)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case ProviderOllama:
		return NewOllamaProvider(cfg), nil
	case ProviderMock:
		return NewOfflineProvider(), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
