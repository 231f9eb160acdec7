package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/hyperjump/docstudio/internal/models"
)

// csvHeader is the fixed column order of the CSV backend and of CSV exports.
var csvHeader = []string{
	"filename", "file_type", "file_size_kb", "original_word_count", "summary",
	"summary_word_count", "model_used", "summary_length", "date", "extracted_text",
}

// CSVStore keeps records as rows of a CSV file with a header row.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store backed by path. The header is written on first append.
func NewCSVStore(path string) (*CSVStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &CSVStore{path: path}, nil
}

// Backend returns BackendCSV.
func (s *CSVStore) Backend() Backend { return BackendCSV }

// Append writes rec as one row, preceded by the header when the file is new or empty.
func (s *CSVStore) Append(ctx context.Context, rec *models.SummaryRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(recordRow(rec)); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ListAll returns every row in file order.
func (s *CSVStore) ListAll(ctx context.Context) ([]*models.SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*models.SummaryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	recs := []*models.SummaryRecord{}
	for line := 0; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		if line == 0 {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.path, line+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Search returns records whose filename, summary or extracted text contains query.
func (s *CSVStore) Search(ctx context.Context, query string) ([]*models.SummaryRecord, error) {
	recs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(recs, query), nil
}

// Delete is not supported by flat files.
func (s *CSVStore) Delete(ctx context.Context, filename string) (int64, error) {
	return 0, &UnsupportedOperationError{Backend: BackendCSV, Op: "delete"}
}

// Close is a no-op.
func (s *CSVStore) Close() error { return nil }

func recordRow(r *models.SummaryRecord) []string {
	return []string{
		r.Filename,
		r.FileType,
		strconv.FormatFloat(r.FileSizeKB, 'f', -1, 64),
		strconv.Itoa(r.OriginalWordCount),
		r.Summary,
		strconv.Itoa(r.SummaryWordCount),
		r.ModelUsed,
		r.SummaryLength,
		r.Date,
		r.ExtractedText,
	}
}

func parseRow(row []string) (*models.SummaryRecord, error) {
	size, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return nil, fmt.Errorf("file_size_kb: %w", err)
	}
	words, err := strconv.Atoi(row[3])
	if err != nil {
		return nil, fmt.Errorf("original_word_count: %w", err)
	}
	summaryWords, err := strconv.Atoi(row[5])
	if err != nil {
		return nil, fmt.Errorf("summary_word_count: %w", err)
	}
	return &models.SummaryRecord{
		Filename:          row[0],
		FileType:          row[1],
		FileSizeKB:        size,
		OriginalWordCount: words,
		Summary:           row[4],
		SummaryWordCount:  summaryWords,
		ModelUsed:         row[6],
		SummaryLength:     row[7],
		Date:              row[8],
		ExtractedText:     row[9],
	}, nil
}
