package storage

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/models"
)

// Paths locates each backend's file.
type Paths struct {
	JSON   string `yaml:"json" json:"json"`
	CSV    string `yaml:"csv" json:"csv"`
	SQLite string `yaml:"sqlite" json:"sqlite"`
}

// RecordIndex mirrors records saved to the SQLite backend.
type RecordIndex interface {
	Index(rec *models.SummaryRecord) error
	Delete(ids []int64) error
}

// Manager opens backends on first use and routes each save to the backend the caller picks.
type Manager struct {
	paths  Paths
	logger *zap.Logger
	index  RecordIndex

	mu     sync.Mutex
	stores map[Backend]Store
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithIndex mirrors SQLite appends and deletes into idx.
func WithIndex(idx RecordIndex) ManagerOption {
	return func(m *Manager) { m.index = idx }
}

// NewManager returns a Manager over paths. No file is touched until a backend is opened.
func NewManager(paths Paths, opts ...ManagerOption) *Manager {
	m := &Manager{paths: paths, stores: map[Backend]Store{}}
	for _, o := range opts {
		o(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Open returns the store for b, opening it on first use.
func (m *Manager) Open(b Backend) (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[b]; ok {
		return s, nil
	}
	var (
		s   Store
		err error
	)
	switch b {
	case BackendJSON:
		s, err = NewJSONStore(m.paths.JSON)
	case BackendCSV:
		s, err = NewCSVStore(m.paths.CSV)
	case BackendSQLite:
		s, err = NewSQLiteStore(m.paths.SQLite)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", b, err)
	}
	m.stores[b] = s
	m.logger.Debug("opened storage backend", zap.String("backend", string(b)))
	return s, nil
}

// SQLite returns the SQLite backend, which also holds reports and the prompt log.
func (m *Manager) SQLite() (*SQLiteStore, error) {
	s, err := m.Open(BackendSQLite)
	if err != nil {
		return nil, err
	}
	return s.(*SQLiteStore), nil
}

// Append saves rec to backend b.
func (m *Manager) Append(ctx context.Context, b Backend, rec *models.SummaryRecord) error {
	s, err := m.Open(b)
	if err != nil {
		return err
	}
	if err := s.Append(ctx, rec); err != nil {
		return err
	}
	if b == BackendSQLite && m.index != nil {
		if err := m.index.Index(rec); err != nil {
			m.logger.Warn("failed to index summary", zap.Int64("id", rec.ID), zap.Error(err))
		}
	}
	return nil
}

// ListAll lists backend b.
func (m *Manager) ListAll(ctx context.Context, b Backend) ([]*models.SummaryRecord, error) {
	s, err := m.Open(b)
	if err != nil {
		return nil, err
	}
	return s.ListAll(ctx)
}

// Search searches backend b. An empty query lists everything.
func (m *Manager) Search(ctx context.Context, b Backend, query string) ([]*models.SummaryRecord, error) {
	s, err := m.Open(b)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return s.ListAll(ctx)
	}
	return s.Search(ctx, query)
}

// Delete removes records named filename from backend b.
func (m *Manager) Delete(ctx context.Context, b Backend, filename string) (int64, error) {
	if b != BackendSQLite {
		return 0, &UnsupportedOperationError{Backend: b, Op: "delete"}
	}
	s, err := m.SQLite()
	if err != nil {
		return 0, err
	}
	var ids []int64
	if m.index != nil {
		if ids, err = s.IDsByFilename(ctx, filename); err != nil {
			return 0, fmt.Errorf("failed to look up summaries: %w", err)
		}
	}
	n, err := s.Delete(ctx, filename)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		if err := m.index.Delete(ids); err != nil {
			m.logger.Warn("failed to remove summaries from index", zap.String("filename", filename), zap.Error(err))
		}
	}
	return n, nil
}

// DiskUsage reports the on-disk size of each backend's files.
func (m *Manager) DiskUsage() (map[Backend]int64, error) {
	out := map[Backend]int64{}
	for b, paths := range map[Backend][]string{
		BackendJSON:   {m.paths.JSON},
		BackendCSV:    {m.paths.CSV},
		BackendSQLite: sqliteFiles(m.paths.SQLite),
	} {
		n, err := DiskUsageBytes(paths...)
		if err != nil {
			return nil, fmt.Errorf("failed to measure %s backend: %w", b, err)
		}
		out[b] = n
	}
	return out, nil
}

// Close closes every opened backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for b, s := range m.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
		delete(m.stores, b)
	}
	return first
}
