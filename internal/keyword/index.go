// Package keyword provides ranked full-text search over saved summaries.
package keyword

import "github.com/hyperjump/docstudio/internal/models"

// SearchOptions tunes a history search. Nil means use defaults.
type SearchOptions struct {
	// FilenameBoost multiplies matches in the filename field. Values <= 1 disable the boost.
	FilenameBoost float64
	// Fuzzy enables typo-tolerant term matching.
	Fuzzy bool
	// Fuzziness is the maximum edit distance for fuzzy matching. Default 1.
	Fuzziness int
}

// Hit is one ranked history match.
type Hit struct {
	ID       int64   `json:"id"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// TermDictionary exposes indexed terms with their document frequency.
type TermDictionary interface {
	Terms() (map[string]int, error)
}

// historyDoc is the indexed form of a summary record.
type historyDoc struct {
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
	Text     string `json:"text"`
	Model    string `json:"model"`
	Date     string `json:"date"`
}

func newHistoryDoc(rec *models.SummaryRecord) historyDoc {
	return historyDoc{
		Filename: rec.Filename,
		Summary:  rec.Summary,
		Text:     rec.ExtractedText,
		Model:    rec.ModelUsed,
		Date:     rec.Date,
	}
}
