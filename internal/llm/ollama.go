package llm

const (
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	DefaultOllamaModel   = "llama3.2"
)

// NewOllamaProvider creates a provider for a local Ollama server through its
// OpenAI-compatible endpoint. No API key is needed.
func NewOllamaProvider(cfg ProviderConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return newChatCompletionProvider("ollama", cfg)
}
