package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/compliance"
	"github.com/hyperjump/docstudio/internal/config"
	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/internal/server"
	"github.com/hyperjump/docstudio/internal/storage"
)

// Components holds initialized services.
type Components struct {
	Config     *config.Config
	Extractor  *extract.Extractor
	Client     *llm.Client
	Index      *keyword.HistoryIndex
	Store      *storage.Manager
	Summarizer *agent.Summarizer
	Compliance *agent.ComplianceAgent
	Chatbot    *agent.Chatbot
	Banner     *agent.Banner
	Analyst    *agent.Analyst
	Sessions   *agent.Sessions
	Backend    storage.Backend
}

// Close releases the provider, history store and index.
func (c *Components) Close() error {
	var errs []error
	if c.Client != nil {
		errs = append(errs, c.Client.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Index != nil {
		errs = append(errs, c.Index.Close())
	}
	return errors.Join(errs...)
}

// ServerDeps returns the handler dependencies for the HTTP API.
func (c *Components) ServerDeps() server.Deps {
	return server.Deps{
		Extractor:      c.Extractor,
		Client:         c.Client,
		Summarizer:     c.Summarizer,
		Compliance:     c.Compliance,
		Chatbot:        c.Chatbot,
		Banner:         c.Banner,
		Analyst:        c.Analyst,
		Sessions:       c.Sessions,
		Store:          c.Store,
		Index:          c.Index,
		DefaultBackend: c.Backend,
		MaxUploadBytes: c.Config.Extract.MaxFileSizeBytes(),
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	backend, err := storage.ParseBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}
	client := llm.NewClient(provider, prompt.NewBuilder(),
		llm.WithLogger(logger),
		llm.WithDefaults(cfg.LLM.Temperature, cfg.LLM.MaxTokens))
	c := &Components{Config: cfg, Client: client, Backend: backend}

	c.Index, err = keyword.NewHistoryIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize history index: %w", err)
	}
	c.Store = storage.NewManager(storage.Paths{
		JSON:   cfg.Storage.JSONPath,
		CSV:    cfg.Storage.CSVPath,
		SQLite: cfg.Storage.DatabasePath,
	}, storage.WithLogger(logger), storage.WithIndex(c.Index))
	db, err := c.Store.SQLite()
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	analyzer := compliance.NewAnalyzer(client,
		compliance.WithChunkSize(cfg.Compliance.ChunkSize),
		compliance.WithMaxScan(cfg.Compliance.MaxScan),
		compliance.WithThresholds(cfg.Compliance.Thresholds.Values()),
		compliance.WithLogger(logger))

	c.Extractor = extract.NewExtractor(extract.WithLogger(logger), extract.WithPreviewRows(cfg.Extract.PreviewRows))
	c.Summarizer = agent.NewSummarizer(client, logger)
	c.Compliance = agent.NewComplianceAgent(analyzer, client.Prompts(), db, db, logger)
	c.Chatbot = agent.NewChatbot(client, logger)
	c.Banner = agent.NewBanner(client)
	c.Analyst = agent.NewAnalyst(client)
	c.Sessions = agent.NewSessions()

	logger.Debug("components initialized",
		zap.String("provider", client.ProviderName()),
		zap.String("model", client.Model()),
		zap.String("backend", string(backend)))
	return c, nil
}
