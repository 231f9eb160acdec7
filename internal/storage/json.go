package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperjump/docstudio/internal/models"
)

// JSONStore keeps all records in a single file holding one top-level JSON array.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore returns a store backed by path. The file is created on first append.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &JSONStore{path: path}, nil
}

// Backend returns BackendJSON.
func (s *JSONStore) Backend() Backend { return BackendJSON }

// Append adds rec to the end of the array and rewrites the file atomically.
func (s *JSONStore) Append(ctx context.Context, rec *models.SummaryRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// ListAll returns every record in file order.
func (s *JSONStore) ListAll(ctx context.Context) ([]*models.SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Search returns records whose filename, summary or extracted text contains query.
func (s *JSONStore) Search(ctx context.Context, query string) ([]*models.SummaryRecord, error) {
	recs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(recs, query), nil
}

// Delete is not supported by flat files.
func (s *JSONStore) Delete(ctx context.Context, filename string) (int64, error) {
	return 0, &UnsupportedOperationError{Backend: BackendJSON, Op: "delete"}
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) load() ([]*models.SummaryRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*models.SummaryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	recs := []*models.SummaryRecord{}
	if len(data) == 0 {
		return recs, nil
	}
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return recs, nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
