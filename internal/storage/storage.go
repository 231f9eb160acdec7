// Package storage persists summary records to interchangeable flat-file and embedded-database backends.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docstudio/internal/models"
)

// Backend names a persistence backend.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendCSV    Backend = "csv"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend maps a user-supplied name to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return BackendJSON, nil
	case "csv":
		return BackendCSV, nil
	case "sqlite", "sqlite database", "db", "database":
		return BackendSQLite, nil
	}
	return "", fmt.Errorf("unknown storage backend %q", s)
}

// Store is a persistence backend for summary records. Backends are independent:
// a record appended to one is not visible through another.
type Store interface {
	Backend() Backend
	Append(ctx context.Context, rec *models.SummaryRecord) error
	ListAll(ctx context.Context) ([]*models.SummaryRecord, error)
	Search(ctx context.Context, query string) ([]*models.SummaryRecord, error)
	// Delete removes every record with the given filename and returns how many were removed.
	Delete(ctx context.Context, filename string) (int64, error)
	Close() error
}

// UnsupportedOperationError is returned when a backend does not implement an operation.
type UnsupportedOperationError struct {
	Backend Backend
	Op      string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s backend", e.Op, e.Backend)
}

// matches reports whether query is a case-insensitive substring of the record's
// filename, summary or extracted text.
func matches(rec *models.SummaryRecord, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(rec.Filename), q) ||
		strings.Contains(strings.ToLower(rec.Summary), q) ||
		strings.Contains(strings.ToLower(rec.ExtractedText), q)
}

func filter(recs []*models.SummaryRecord, query string) []*models.SummaryRecord {
	out := make([]*models.SummaryRecord, 0, len(recs))
	for _, r := range recs {
		if matches(r, query) {
			out = append(out, r)
		}
	}
	return out
}
