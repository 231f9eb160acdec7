package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/compliance"
	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/internal/storage"
)

// badRequest marks an error caused by the request itself.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func invalid(err error) error { return &badRequest{err: err} }

// statusFor maps a component error to an HTTP status.
func statusFor(err error) int {
	var (
		unsupported *extract.UnsupportedFormatError
		extraction  *extract.ExtractionError
		provider    *llm.ProviderError
		unsupOp     *storage.UnsupportedOperationError
		missing     *prompt.MissingParamError
		bad         *badRequest
		tooLarge    *tooLargeError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.As(err, &provider):
		return http.StatusBadGateway
	case errors.As(err, &unsupOp):
		return http.StatusMethodNotAllowed
	case errors.As(err, &missing), errors.As(err, &bad),
		errors.Is(err, compliance.ErrNoText), errors.Is(err, llm.ErrEmptyInput),
		errors.Is(err, agent.ErrEmptyQuestion), errors.Is(err, agent.ErrNoData):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrSessionNotFound), errors.Is(err, storage.ErrPromptNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status, logging server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}
