package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/storage"
)

const (
	defaultFindLimit    = 10
	maxFindLimit        = 100
	defaultReportsLimit = 50
	filenameBoost       = 2.0
)

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r.URL.Query().Get("backend"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	recs, err := s.deps.Store.Search(r.Context(), backend, r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"backend": backend, "records": recs, "count": len(recs)})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r.URL.Query().Get("backend"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	filename := chi.URLParam(r, "filename")
	n, err := s.deps.Store.Delete(r.Context(), backend, filename)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("history deleted", zap.String("filename", filename), zap.Int64("rows", n))
	s.respondJSON(w, http.StatusOK, map[string]any{"filename": filename, "deleted": n})
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r.URL.Query().Get("backend"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	recs, err := s.deps.Store.ListAll(r.Context(), backend)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, storage.ComputeStats(recs, time.Now()))
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	backend, err := s.backend(q.Get("backend"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := storage.ParseExportFormat(q.Get("format"))
	if err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	recs, err := s.deps.Store.Search(r.Context(), backend, q.Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="summary_history_%s.%s"`, time.Now().Format("20060102_150405"), format))
	if err := storage.Export(w, recs, format); err != nil {
		// Headers are already sent.
		s.logger.Error("history export failed", zap.String("format", string(format)), zap.Error(err))
	}
}

func (s *Server) handleHistoryFind(w http.ResponseWriter, r *http.Request) {
	if s.deps.Index == nil {
		s.respondError(w, http.StatusNotImplemented, "history index not enabled")
		return
	}
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	opts := &keyword.SearchOptions{FilenameBoost: filenameBoost, Fuzzy: parseBool(q.Get("fuzzy"), false)}
	hits, err := s.deps.Index.Search(r.Context(), query, parseLimit(q.Get("limit"), defaultFindLimit, maxFindLimit), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := map[string]any{"query": query, "hits": hits}
	if suggestion, err := keyword.NewSuggester(s.deps.Index, 0).Suggest(query); err != nil {
		s.logger.Debug("suggestion failed", zap.Error(err))
	} else if suggestion != "" {
		resp["suggestion"] = suggestion
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	db, err := s.deps.Store.SQLite()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reports, err := db.ListReports(r.Context(), parseLimit(r.URL.Query().Get("limit"), defaultReportsLimit, 1000))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
