package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/fileid"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/storage"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// Summarizer produces a summary record for a document.
type Summarizer interface {
	Summarize(ctx context.Context, doc *models.ExtractedDocument, band models.SummaryLength, withTakeaways bool) (*agent.SummaryResult, error)
}

// Saver appends records to a history backend.
type Saver interface {
	Append(ctx context.Context, b storage.Backend, rec *models.SummaryRecord) error
}

// Inbox extracts, summarizes and saves files dropped into watched directories.
type Inbox struct {
	extractor  *extract.Extractor
	summarizer Summarizer
	saver      Saver
	backend    storage.Backend
	band       models.SummaryLength
	maxBytes   int64
	logger     *zap.Logger

	mu sync.Mutex
	// seen maps a path key to the content ID last summarized for it.
	seen map[string]string
}

// InboxConfig selects where inbox summaries go.
type InboxConfig struct {
	Backend  storage.Backend
	Band     models.SummaryLength
	MaxBytes int64
}

// NewInbox returns an Inbox. A zero MaxBytes disables the size limit.
func NewInbox(ex *extract.Extractor, s Summarizer, saver Saver, cfg InboxConfig, logger *zap.Logger) *Inbox {
	if cfg.Band == "" {
		cfg.Band = models.LengthMedium
	}
	return &Inbox{
		extractor:  ex,
		summarizer: s,
		saver:      saver,
		backend:    cfg.Backend,
		band:       cfg.Band,
		maxBytes:   cfg.MaxBytes,
		logger:     utils.LoggerOrNop(logger),
		seen:       make(map[string]string),
	}
}

// Process summarizes the file at path and saves the record. A file whose content
// matches the last processed version is skipped and returns nil, nil.
func (in *Inbox) Process(ctx context.Context, path string) (*models.SummaryRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if in.maxBytes > 0 && info.Size() > in.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, over the %d byte limit", path, info.Size(), in.maxBytes)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	key, id := fileid.PathKey(path), fileid.ContentID(content)
	in.mu.Lock()
	prev, ok := in.seen[key]
	in.mu.Unlock()
	if ok && prev == id {
		in.logger.Debug("inbox file unchanged", zap.String("path", path))
		return nil, nil
	}

	doc, err := in.extractor.ExtractBytes(filepath.Base(path), "", content)
	if err != nil {
		return nil, err
	}
	res, err := in.summarizer.Summarize(ctx, doc, in.band, false)
	if err != nil {
		return nil, err
	}
	if err := in.saver.Append(ctx, in.backend, res.Record); err != nil {
		return nil, fmt.Errorf("failed to save summary of %s: %w", path, err)
	}
	in.mu.Lock()
	in.seen[key] = id
	in.mu.Unlock()
	in.logger.Info("inbox file summarized", zap.String("path", path), zap.String("backend", string(in.backend)))
	return res.Record, nil
}

// Handler adapts Process to a Watcher callback, logging failures.
func (in *Inbox) Handler(ctx context.Context) func(path string) {
	return func(path string) {
		if ctx.Err() != nil {
			return
		}
		if _, err := in.Process(ctx, path); err != nil {
			in.logger.Warn("inbox file failed", zap.String("path", path), zap.Error(err))
		}
	}
}
