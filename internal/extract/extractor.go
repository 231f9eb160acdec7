// Package extract converts uploaded documents into normalized plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/models"
)

// DefaultPreviewRows is the number of data rows rendered per sheet or CSV file.
const DefaultPreviewRows = 20

// Extractor extracts plain text from document files.
type Extractor struct {
	previewRows int
	logger      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPreviewRows sets how many data rows of a spreadsheet are rendered.
func WithPreviewRows(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.previewRows = n
		}
	}
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{previewRows: DefaultPreviewRows, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its normalized text.
// The format is inferred from the extension.
func (e *Extractor) Extract(path string) (*models.ExtractedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(filepath.Base(path), "", content)
}

// ExtractReader consumes r once and extracts its text. mimeType may be empty.
func (e *Extractor) ExtractReader(name, mimeType string, r io.Reader) (*models.ExtractedDocument, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return e.ExtractBytes(name, mimeType, content)
}

// ExtractBytes extracts text from content, dispatching on mimeType first and on the
// extension of name second. Returns *UnsupportedFormatError or *ExtractionError on failure.
func (e *Extractor) ExtractBytes(name, mimeType string, content []byte) (*models.ExtractedDocument, error) {
	format, err := DetectFormat(name, mimeType)
	if err != nil {
		return nil, err
	}
	raw, err := e.extractFormat(format, content)
	if err != nil {
		e.logger.Debug("extraction failed", zap.String("file", name), zap.String("format", string(format)), zap.Error(err))
		return nil, &ExtractionError{Format: format, Name: name, Err: err}
	}
	hint := mimeType
	if hint == "" {
		hint = format.MIMEType()
	}
	text := Normalize(raw)
	e.logger.Debug("extracted document",
		zap.String("file", name),
		zap.String("format", string(format)),
		zap.Int("bytes", len(content)),
		zap.Int("chars", len(text)))
	return &models.ExtractedDocument{
		SourceName: name,
		MIMEHint:   hint,
		Text:       text,
		SizeBytes:  int64(len(content)),
	}, nil
}

func (e *Extractor) extractFormat(format Format, content []byte) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(content)
	case FormatText:
		return decodeText(content), nil
	case FormatCSV:
		return extractCSV(content, e.previewRows)
	case FormatXLSX, FormatXLS:
		return extractExcel(content, e.previewRows)
	case FormatDOCX:
		return extractDOCX(content)
	case FormatDOC:
		if isZip(content) {
			return extractDOCX(content)
		}
		return extractLegacy(content)
	case FormatRTF, FormatODT:
		return extractLegacy(content)
	}
	return "", fmt.Errorf("no extractor for format %q", format)
}

func isZip(content []byte) bool {
	return bytes.HasPrefix(content, []byte("PK\x03\x04"))
}
