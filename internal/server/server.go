// Package server provides the HTTP API for docstudio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/config"
	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/storage"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// WatchService reports the inbox directories being watched.
type WatchService interface {
	Directories() []string
}

// Deps are the components the handlers call.
type Deps struct {
	Extractor  *extract.Extractor
	Client     *llm.Client
	Summarizer *agent.Summarizer
	Compliance *agent.ComplianceAgent
	Chatbot    *agent.Chatbot
	Banner     *agent.Banner
	Analyst    *agent.Analyst
	Sessions   *agent.Sessions
	Store      *storage.Manager
	// Index is optional; without it history/find returns 501.
	Index *keyword.HistoryIndex
	// Watch is optional.
	Watch WatchService
	// DefaultBackend receives saves that do not name a backend.
	DefaultBackend storage.Backend
	// MaxUploadBytes bounds each uploaded file. Zero means unlimited.
	MaxUploadBytes int64
}

// Server is the HTTP server for the docstudio API.
type Server struct {
	deps    Deps
	config  *config.ServerConfig
	logger  *zap.Logger
	handler http.Handler
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(deps Deps, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if deps.DefaultBackend == "" {
		deps.DefaultBackend = storage.BackendSQLite
	}
	s := &Server{deps: deps, config: cfg, logger: utils.LoggerOrNop(logger)}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	r.Use(middleware.Timeout(timeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/domains", s.handleDomains)
		r.Post("/extract", s.handleExtract)
		r.Post("/summarize", s.handleSummarize)
		r.Post("/compliance", s.handleCompliance)
		r.Get("/prompts", s.handlePromptsList)
		r.Post("/prompts", s.handlePromptsSave)
		r.Post("/sessions", s.handleSessionCreate)
		r.Get("/sessions/{id}", s.handleSessionGet)
		r.Delete("/sessions/{id}", s.handleSessionDelete)
		r.Post("/sessions/{id}/protocol", s.handleSessionProtocol)
		r.Post("/sessions/{id}/chat", s.handleSessionChat)
		r.Post("/banner", s.handleBanner)
		r.Post("/analyst", s.handleAnalyst)
		r.Get("/history", s.handleHistoryList)
		r.Get("/history/stats", s.handleHistoryStats)
		r.Get("/history/export", s.handleHistoryExport)
		r.Get("/history/find", s.handleHistoryFind)
		r.Get("/history/reports", s.handleReportsList)
		r.Delete("/history/{filename}", s.handleHistoryDelete)
		r.Get("/watch/directories", s.handleWatchDirectories)
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
