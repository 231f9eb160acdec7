package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvProvider      = "DOCSTUDIO_PROVIDER"
	EnvModel         = "DOCSTUDIO_MODEL"
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"
	EnvDebug         = "DOCSTUDIO_DEBUG"
)

// LoadDotEnv loads variables from the given .env files into the process environment
// without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides provider settings and secrets from the environment. The API key
// is taken from the variable matching the selected provider when the file leaves it empty.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv(EnvDebug); v == "1" || strings.EqualFold(v, "true") {
		cfg.Debug = true
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if v := os.Getenv(EnvOpenAIKey); v != "" {
			cfg.LLM.APIKey = v
		}
	case "gemini":
		if v := os.Getenv(EnvGeminiKey); v != "" {
			cfg.LLM.APIKey = v
		} else if v := os.Getenv(EnvGoogleKey); v != "" {
			cfg.LLM.APIKey = v
		}
	case "ollama":
		if v := os.Getenv(EnvOllamaBaseURL); v != "" {
			cfg.LLM.BaseURL = v
		}
	}
}
