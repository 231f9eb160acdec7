package config

import (
	"time"

	"github.com/hyperjump/docstudio/internal/compliance"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 5 * time.Minute
	}
	if cfg.Server.SessionIdleTimeout == 0 {
		cfg.Server.SessionIdleTimeout = time.Hour
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4000
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.JSONPath == "" {
		cfg.Storage.JSONPath = ".docstudio/history/summaries.json"
	}
	if cfg.Storage.CSVPath == "" {
		cfg.Storage.CSVPath = ".docstudio/history/summaries.csv"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".docstudio/history/summaries.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = ".docstudio/indices/history.bleve"
	}
	if cfg.Extract.MaxFileSizeMB == 0 {
		cfg.Extract.MaxFileSizeMB = 50
	}
	if cfg.Extract.PreviewRows == 0 {
		cfg.Extract.PreviewRows = 20
	}
	if cfg.Compliance.ChunkSize == 0 {
		cfg.Compliance.ChunkSize = compliance.DefaultChunkSize
	}
	if cfg.Compliance.MaxScan == 0 {
		cfg.Compliance.MaxScan = compliance.DefaultMaxScan
	}
	th := cfg.Compliance.Thresholds.Values()
	if cfg.Compliance.Thresholds.CompliantMax == nil {
		cfg.Compliance.Thresholds.CompliantMax = &th.CompliantMax
	}
	if cfg.Compliance.Thresholds.NeedsReviewMax == nil {
		cfg.Compliance.Thresholds.NeedsReviewMax = &th.NeedsReviewMax
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".doc", ".rtf", ".odt", ".csv", ".xlsx"}
	}
	if cfg.Watch.SummaryLength == "" {
		cfg.Watch.SummaryLength = "Medium"
	}
	if cfg.Watch.Backend == "" {
		cfg.Watch.Backend = cfg.Storage.Backend
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 2 * time.Second
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
