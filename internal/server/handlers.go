package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/compliance"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"provider": s.deps.Client.ProviderName(),
		"model":    s.deps.Client.Model(),
		"sessions": s.deps.Sessions.Len(),
	}
	if s.deps.Store != nil {
		usage, err := s.deps.Store.DiskUsage()
		if err != nil {
			s.logger.Warn("status: disk usage failed", zap.Error(err))
		} else {
			resp["disk_usage_bytes"] = usage
		}
	}
	if s.deps.Index != nil {
		if n, err := s.deps.Index.DocCount(); err == nil {
			resp["indexed_summaries"] = n
		}
	}
	if s.deps.Watch != nil {
		resp["watch_directories"] = s.deps.Watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"domains": compliance.Domains})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	docs, err := s.extractEach(r, "file")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(docs) == 0 {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

type summarizeRequest struct {
	Text      string `json:"text"`
	Filename  string `json:"filename"`
	Length    string `json:"length"`
	Backend   string `json:"backend"`
	Takeaways bool   `json:"takeaways"`
	Save      *bool  `json:"save,omitempty"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var (
		req summarizeRequest
		doc *models.ExtractedDocument
	)
	save := true
	if isMultipart(r) {
		docs, err := s.extractEach(r, "file")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		req.Text = r.FormValue("text")
		req.Filename = r.FormValue("filename")
		req.Length = r.FormValue("length")
		req.Backend = r.FormValue("backend")
		req.Takeaways = parseBool(r.FormValue("takeaways"), false)
		save = parseBool(r.FormValue("save"), true)
		if len(docs) > 0 {
			doc = docs[0]
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if req.Save != nil {
			save = *req.Save
		}
	}
	if doc == nil {
		doc = agent.TextDocument(req.Filename, req.Text)
	}
	band, err := models.ParseSummaryLength(req.Length)
	if err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	backend, err := s.backend(req.Backend)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Debug("summarize request", zap.String("file", doc.SourceName), zap.String("length", string(band)))
	res, err := s.deps.Summarizer.Summarize(r.Context(), doc, band, req.Takeaways)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := map[string]any{"record": res.Record, "takeaways": res.Takeaways}
	if save {
		if err := s.deps.Store.Append(r.Context(), backend, res.Record); err != nil {
			s.fail(w, r, err)
			return
		}
		resp["saved_to"] = backend
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type complianceRequest struct {
	Text        string `json:"text"`
	Domain      string `json:"domain"`
	Instruction string `json:"instruction"`
	SessionID   string `json:"session_id"`
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	var (
		req    complianceRequest
		docs   []*models.ExtractedDocument
		failed []extractFailure
	)
	if isMultipart(r) {
		var err error
		if docs, failed, err = s.extractUploads(r, "files"); err != nil {
			s.fail(w, r, err)
			return
		}
		for _, f := range failed {
			s.logger.Warn("upload skipped", zap.String("file", f.name), zap.Error(f.err))
		}
		req.Text = r.FormValue("text")
		req.Domain = r.FormValue("domain")
		req.Instruction = r.FormValue("instruction")
		req.SessionID = r.FormValue("session_id")
	} else if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(docs) == 0 && len(failed) > 0 {
		s.fail(w, r, failed[0].err)
		return
	}
	if len(docs) == 0 && strings.TrimSpace(req.Text) != "" {
		docs = append(docs, agent.TextDocument(agent.TextInputName, req.Text))
	}
	if req.Domain == "" {
		req.Domain = compliance.Domains[0].Name
	} else if d, ok := compliance.LookupDomain(req.Domain); ok {
		req.Domain = d.Name
	}
	var sess *agent.Session
	if req.SessionID != "" {
		var err error
		if sess, err = s.deps.Sessions.Get(req.SessionID); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.logger.Debug("compliance request", zap.String("domain", req.Domain), zap.Int("documents", len(docs)))
	report, err := s.deps.Compliance.Check(r.Context(), sess, docs, req.Domain, req.Instruction)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(failed) > 0 {
		report.FilesFailed = failures(failed)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"report":   report,
		"filename": agent.ReportFilename(report),
	})
}

func (s *Server) handlePromptsList(w http.ResponseWriter, r *http.Request) {
	db, err := s.deps.Store.SQLite()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prompts, err := db.ListPrompts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

func (s *Server) handlePromptsSave(w http.ResponseWriter, r *http.Request) {
	var rec models.PromptRecord
	if err := decodeJSON(r, &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := rec.Validate(); err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	db, err := s.deps.Store.SQLite()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := db.SavePrompt(r.Context(), &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent string `json:"agent"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	kind, err := agent.ParseKind(req.Agent)
	if err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	sess := s.deps.Sessions.Create(kind)
	s.logger.Debug("session created", zap.String("id", sess.ID), zap.String("agent", string(kind)))
	s.respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) session(r *http.Request) (*agent.Session, error) {
	return s.deps.Sessions.Get(chi.URLParam(r, "id"))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"session":  sess,
		"history":  sess.History(),
		"protocol": sess.Protocol(),
	})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(r); err != nil {
		s.fail(w, r, err)
		return
	}
	s.deps.Sessions.Delete(chi.URLParam(r, "id"))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSessionProtocol locks a protocol for the session: either a saved one named
// by prompt_id or a new one given inline, which is appended to the prompt log.
func (s *Server) handleSessionProtocol(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req struct {
		models.PromptRecord
		PromptID int64 `json:"prompt_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.PromptID > 0 {
		db, err := s.deps.Store.SQLite()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		rec, err := db.GetPrompt(r.Context(), req.PromptID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.deps.Compliance.UseProtocol(sess, rec); err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		rec := req.PromptRecord
		if err := rec.Validate(); err != nil {
			s.fail(w, r, invalid(err))
			return
		}
		if err := s.deps.Compliance.LockProtocol(r.Context(), sess, &rec); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"session": sess, "protocol": sess.Protocol()})
}

type chatRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

func (s *Server) handleSessionChat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	answer, err := s.deps.Chatbot.Reply(r.Context(), sess, req.Question, req.Context)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"answer": answer, "history": sess.History()})
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	var req agent.BannerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	copyText, err := s.deps.Banner.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"platform": req.Platform,
		"style":    req.Style,
		"copy":     copyText,
	})
}

func (s *Server) handleAnalyst(w http.ResponseWriter, r *http.Request) {
	var (
		req  agent.AnalystRequest
		file *upload
	)
	if isMultipart(r) {
		ups, err := s.readUploads(r, "file")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if len(ups) > 0 {
			file = &ups[0]
		}
		req.Type = r.FormValue("analysis_type")
		req.Goal = r.FormValue("goal")
		req.Data = r.FormValue("data_csv")
	} else if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Type != "" && !slices.Contains(agent.AnalysisTypes, req.Type) {
		s.respondError(w, http.StatusBadRequest, "unknown analysis_type: "+req.Type)
		return
	}

	var (
		analysis string
		err      error
	)
	if file != nil {
		analysis, err = s.deps.Analyst.AnalyzeFile(r.Context(), file.Name, file.Content, req.Type, req.Goal)
	} else {
		analysis, err = s.deps.Analyst.Analyze(r.Context(), req)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = agent.AnalysisSummary
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"analysis_type": req.Type, "analysis": analysis})
}

func (s *Server) handleWatchDirectories(w http.ResponseWriter, r *http.Request) {
	if s.deps.Watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"directories": s.deps.Watch.Directories()})
}

// backend resolves a request's backend name, falling back to the server default.
func (s *Server) backend(name string) (storage.Backend, error) {
	if name == "" {
		return s.deps.DefaultBackend, nil
	}
	b, err := storage.ParseBackend(name)
	if err != nil {
		return "", invalid(err)
	}
	return b, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
