package models

import (
	"fmt"
	"strings"
	"time"
)

// SummaryLength is a target word-count band for a summary.
type SummaryLength string

const (
	LengthShort  SummaryLength = "Short"
	LengthMedium SummaryLength = "Medium"
	LengthLong   SummaryLength = "Long"
)

// WordRange returns the inclusive word range requested for the band.
func (l SummaryLength) WordRange() (min, max int) {
	switch l {
	case LengthShort:
		return 100, 200
	case LengthLong:
		return 400, 600
	default:
		return 200, 400
	}
}

// Label returns the band as shown to users, e.g. "Medium (200-400 words)".
func (l SummaryLength) Label() string {
	min, max := l.WordRange()
	return fmt.Sprintf("%s (%d-%d words)", l, min, max)
}

// ParseSummaryLength accepts "short", "Medium", or a full label such as "Long (400-600 words)".
func ParseSummaryLength(s string) (SummaryLength, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LengthMedium, nil
	}
	head := strings.ToLower(strings.Fields(s)[0])
	switch head {
	case "short":
		return LengthShort, nil
	case "medium":
		return LengthMedium, nil
	case "long":
		return LengthLong, nil
	}
	return "", fmt.Errorf("unknown summary length %q", s)
}

// SummaryRecord is one persisted summarize action.
// ID and CreatedAt are only populated by the embedded-table backend.
type SummaryRecord struct {
	ID                int64     `json:"id,omitempty" db:"id"`
	Filename          string    `json:"filename" db:"filename"`
	FileType          string    `json:"file_type" db:"file_type"`
	FileSizeKB        float64   `json:"file_size_kb" db:"file_size_kb"`
	OriginalWordCount int       `json:"original_word_count" db:"original_word_count"`
	Summary           string    `json:"summary" db:"summary"`
	SummaryWordCount  int       `json:"summary_word_count" db:"summary_word_count"`
	ModelUsed         string    `json:"model_used" db:"model_used"`
	SummaryLength     string    `json:"summary_length" db:"summary_length"`
	Date              string    `json:"date" db:"date"`
	ExtractedText     string    `json:"extracted_text" db:"extracted_text"`
	CreatedAt         time.Time `json:"created_at,omitzero" db:"created_at"`
}

// Validate reports whether the record carries the fields every backend requires.
func (r *SummaryRecord) Validate() error {
	if r.Filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if r.Summary == "" {
		return fmt.Errorf("summary cannot be empty")
	}
	return nil
}

// Stats aggregates a set of summary records.
type Stats struct {
	TotalDocuments      int            `json:"total_documents"`
	TotalWords          int            `json:"total_words_processed"`
	AverageSummaryWords float64        `json:"average_summary_words"`
	ModelUsage          map[string]int `json:"model_usage"`
	FileTypes           map[string]int `json:"file_types"`
	Today               int            `json:"today"`
}
