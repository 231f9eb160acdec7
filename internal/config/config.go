// Package config provides configuration loading and structs for the docstudio server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docstudio/internal/compliance"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Storage    StorageConfig    `yaml:"storage"`
	Extract    ExtractConfig    `yaml:"extract"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// SessionIdleTimeout drops agent sessions unused for this long. Negative disables it.
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
}

// LLMConfig selects and tunes the text-generation provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StorageConfig holds the history backend paths.
type StorageConfig struct {
	// Backend is the default backend for saves that do not name one.
	Backend        string `yaml:"backend"`
	JSONPath       string `yaml:"json_path"`
	CSVPath        string `yaml:"csv_path"`
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// ExtractConfig bounds document extraction.
type ExtractConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
	PreviewRows   int `yaml:"preview_rows"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (e ExtractConfig) MaxFileSizeBytes() int64 {
	return int64(e.MaxFileSizeMB) << 20
}

// ComplianceConfig tunes chunking, response scanning and status thresholds.
type ComplianceConfig struct {
	ChunkSize  int              `yaml:"chunk_size"`
	MaxScan    int              `yaml:"max_scan_bytes"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// ThresholdsConfig holds the status thresholds. Nil fields are unset, so an
// explicit 0 is kept.
type ThresholdsConfig struct {
	CompliantMax   *int `yaml:"compliant_max"`
	NeedsReviewMax *int `yaml:"needs_review_max"`
}

// Values returns the thresholds, treating unset fields as the defaults.
func (t ThresholdsConfig) Values() compliance.Thresholds {
	v := compliance.DefaultThresholds()
	if t.CompliantMax != nil {
		v.CompliantMax = *t.CompliantMax
	}
	if t.NeedsReviewMax != nil {
		v.NeedsReviewMax = *t.NeedsReviewMax
	} else {
		v.NeedsReviewMax = max(v.NeedsReviewMax, v.CompliantMax)
	}
	return v
}

// WatchConfig holds inbox directory settings.
type WatchConfig struct {
	Directories   []string      `yaml:"directories"`
	Extensions    []string      `yaml:"extensions"`
	Recursive     *bool         `yaml:"recursive"`
	SummaryLength string        `yaml:"summary_length"`
	Backend       string        `yaml:"backend"`
	Debounce      time.Duration `yaml:"debounce"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies defaults and environment
// overrides, and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	finish(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and otherwise returns the defaults with
// relative paths resolved against the working directory.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	finish(cfg, dir)
	return cfg, nil
}

func finish(cfg *Config, configDir string) {
	ApplyDefaults(cfg)
	ApplyEnv(cfg)
	cfg.Storage.JSONPath = expandPath(cfg.Storage.JSONPath, configDir)
	cfg.Storage.CSVPath = expandPath(cfg.Storage.CSVPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Compliance.ChunkSize <= 0 {
		return fmt.Errorf("compliance chunk_size must be positive, got %d", c.Compliance.ChunkSize)
	}
	if c.Compliance.MaxScan < c.Compliance.ChunkSize {
		return fmt.Errorf("compliance max_scan_bytes (%d) must be at least chunk_size (%d)", c.Compliance.MaxScan, c.Compliance.ChunkSize)
	}
	if err := c.Compliance.Thresholds.Values().Validate(); err != nil {
		return err
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.Extract.MaxFileSizeMB <= 0 {
		return fmt.Errorf("extract max_file_size_mb must be positive, got %d", c.Extract.MaxFileSizeMB)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "gemini", "ollama", "mock":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// Save writes the config to path. The API key is never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.LLM.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
