package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/hyperjump/docstudio/internal/models"
)

const multipartMemory = 32 << 20

// tooLargeError reports an upload over the configured limit.
type tooLargeError struct {
	Name  string
	Limit int64
}

func (e *tooLargeError) Error() string {
	return fmt.Sprintf("file %s exceeds the %d byte upload limit", e.Name, e.Limit)
}

// upload is one file read from a multipart request.
type upload struct {
	Name     string
	MIMEType string
	Content  []byte
}

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(ct, "multipart/")
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid(errors.New("request body is empty"))
		}
		return invalid(errors.New("invalid request body"))
	}
	return nil
}

// readUploads parses a multipart form and returns the files under field.
func (s *Server) readUploads(r *http.Request, field string) ([]upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, invalid(fmt.Errorf("invalid multipart form: %w", err))
	}
	var out []upload
	for _, fh := range r.MultipartForm.File[field] {
		if limit := s.deps.MaxUploadBytes; limit > 0 && fh.Size > limit {
			return nil, &tooLargeError{Name: fh.Filename, Limit: limit}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		out = append(out, upload{Name: fh.Filename, MIMEType: fh.Header.Get("Content-Type"), Content: content})
	}
	return out, nil
}

// extractUploads runs every file under field through the extractor. A file that
// cannot be extracted is reported in failed and skipped; err is set only when the
// form itself is unusable.
func (s *Server) extractUploads(r *http.Request, field string) (docs []*models.ExtractedDocument, failed []extractFailure, err error) {
	ups, err := s.readUploads(r, field)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range ups {
		doc, err := s.deps.Extractor.ExtractBytes(u.Name, u.MIMEType, u.Content)
		if err != nil {
			failed = append(failed, extractFailure{name: u.Name, err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed, nil
}

// extractEach is extractUploads for handlers that need every file: the first
// extraction failure fails the request.
func (s *Server) extractEach(r *http.Request, field string) ([]*models.ExtractedDocument, error) {
	docs, failed, err := s.extractUploads(r, field)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		return nil, failed[0].err
	}
	return docs, nil
}

type extractFailure struct {
	name string
	err  error
}

func failures(failed []extractFailure) []models.FileFailure {
	out := make([]models.FileFailure, 0, len(failed))
	for _, f := range failed {
		out = append(out, models.FileFailure{Name: f.name, Error: f.err.Error()})
	}
	return out
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func parseLimit(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, max)
}
