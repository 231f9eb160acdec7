package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// DateLayout is the layout of SummaryRecord.Date.
const DateLayout = "2006-01-02T15:04:05"

// SummaryResult is the outcome of one summarize action.
type SummaryResult struct {
	Record    *models.SummaryRecord `json:"record"`
	Takeaways []string              `json:"takeaways,omitempty"`
}

// Summarizer turns an extracted document into a persisted-ready SummaryRecord.
type Summarizer struct {
	client *llm.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewSummarizer returns a Summarizer calling client.
func NewSummarizer(client *llm.Client, logger *zap.Logger) *Summarizer {
	return &Summarizer{client: client, logger: utils.LoggerOrNop(logger), now: time.Now}
}

// Summarize summarizes doc in band and, when withTakeaways is set, asks for key takeaways too.
// The returned record is not saved.
func (s *Summarizer) Summarize(ctx context.Context, doc *models.ExtractedDocument, band models.SummaryLength, withTakeaways bool) (*SummaryResult, error) {
	summary, err := s.client.Summarize(ctx, doc.Text, band)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", doc.SourceName, err)
	}
	rec := &models.SummaryRecord{
		Filename:          doc.SourceName,
		FileType:          doc.MIMEHint,
		FileSizeKB:        float64(doc.SizeBytes) / 1024,
		OriginalWordCount: utils.WordCount(doc.Text),
		Summary:           summary,
		SummaryWordCount:  utils.WordCount(summary),
		ModelUsed:         fmt.Sprintf("%s (%s)", s.client.Model(), s.client.ProviderName()),
		SummaryLength:     band.Label(),
		Date:              s.now().Format(DateLayout),
		ExtractedText:     utils.Preview(doc.Text),
	}
	res := &SummaryResult{Record: rec}
	if withTakeaways {
		if res.Takeaways, err = s.client.KeyTakeaways(ctx, doc.Text); err != nil {
			return nil, fmt.Errorf("failed to extract takeaways from %s: %w", doc.SourceName, err)
		}
	}
	s.logger.Info("document summarized",
		zap.String("file", doc.SourceName),
		zap.Int("words", rec.OriginalWordCount),
		zap.Int("summary_words", rec.SummaryWordCount),
		zap.Int("takeaways", len(res.Takeaways)))
	return res, nil
}

// TextDocument wraps pasted text as a document named name.
func TextDocument(name, text string) *models.ExtractedDocument {
	if name == "" {
		name = "user_input.txt"
	}
	return &models.ExtractedDocument{
		SourceName: name,
		MIMEHint:   "text/plain",
		Text:       text,
		SizeBytes:  int64(len(text)),
	}
}
