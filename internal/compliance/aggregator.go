// Package compliance checks document text against a compliance instruction chunk by chunk
// and folds the per-chunk answers into a report.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// ErrNoText is returned by Analyze when the text has no content to chunk.
var ErrNoText = errors.New("no text to analyze")

// Thresholds maps a violation count to an overall status: at most CompliantMax is
// Compliant, at most NeedsReviewMax is Needs Review, anything above is Non-Compliant.
type Thresholds struct {
	CompliantMax   int `yaml:"compliant_max" json:"compliant_max"`
	NeedsReviewMax int `yaml:"needs_review_max" json:"needs_review_max"`
}

// DefaultThresholds returns 0 / 1-3 / >3.
func DefaultThresholds() Thresholds {
	return Thresholds{CompliantMax: 0, NeedsReviewMax: 3}
}

// Validate rejects negative or inverted thresholds.
func (t Thresholds) Validate() error {
	if t.CompliantMax < 0 {
		return fmt.Errorf("compliant_max must be >= 0, got %d", t.CompliantMax)
	}
	if t.NeedsReviewMax < t.CompliantMax {
		return fmt.Errorf("needs_review_max (%d) must be >= compliant_max (%d)", t.NeedsReviewMax, t.CompliantMax)
	}
	return nil
}

// Status returns the overall status for a violation count.
func (t Thresholds) Status(violations int) models.ComplianceStatus {
	switch {
	case violations <= t.CompliantMax:
		return models.StatusCompliant
	case violations <= t.NeedsReviewMax:
		return models.StatusNeedsReview
	default:
		return models.StatusNonCompliant
	}
}

// Instruction selects the prompt used for each chunk. An empty Custom uses the
// built-in analyst instruction for Domain.
type Instruction struct {
	Domain              string
	Custom              string
	ProtocolName        string
	ProtocolDescription string
}

// Analyzer runs the chunk, prompt, generate, parse loop.
type Analyzer struct {
	client     *llm.Client
	chunker    *Chunker
	thresholds Thresholds
	maxScan    int
	logger     *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithChunkSize sets the chunk bound in characters.
func WithChunkSize(n int) Option {
	return func(a *Analyzer) { a.chunker = NewChunker(n) }
}

// WithThresholds sets the status thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) { a.thresholds = t }
}

// WithMaxScan sets the byte bound of the JSON object scan.
func WithMaxScan(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxScan = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = utils.LoggerOrNop(l) }
}

// NewAnalyzer returns an Analyzer that sends prompts through client.
func NewAnalyzer(client *llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:     client,
		chunker:    NewChunker(DefaultChunkSize),
		thresholds: DefaultThresholds(),
		maxScan:    DefaultMaxScan,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the configured status thresholds.
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// Analyze checks text chunk by chunk, in order. Unparseable answers and failed
// provider calls become sentinel results and never stop the loop. An error is
// returned only for empty text, a cancelled context, a prompt that cannot be
// rendered, or when every chunk failed at the provider.
func (a *Analyzer) Analyze(ctx context.Context, text string, in Instruction) (*models.Report, error) {
	chunks := a.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	reportID := uuid.NewString()
	log := a.logger.With(zap.String("report_id", reportID), zap.String("domain", in.Domain))
	log.Info("compliance analysis started", zap.Int("chunks", len(chunks)))

	results := make([]models.AnalysisResult, 0, len(chunks))
	var firstProviderErr error
	providerFailures := 0
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := a.AnalyzeChunk(ctx, chunk.Text, in)
		if err != nil {
			var perr *llm.ProviderError
			if !errors.As(err, &perr) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("chunk provider call failed", zap.Int("chunk", chunk.Index), zap.Error(err))
			providerFailures++
			if firstProviderErr == nil {
				firstProviderErr = err
			}
			result = ProviderSentinel(perr.Err)
		} else if result.ParseError != "" {
			log.Warn("chunk response not parseable", zap.Int("chunk", chunk.Index), zap.String("error", result.ParseError))
		}
		results = append(results, result)
	}
	if providerFailures == len(chunks) {
		return nil, firstProviderErr
	}

	report := &models.Report{
		ID:                  reportID,
		Domain:              in.Domain,
		ProtocolName:        in.ProtocolName,
		ProtocolDescription: in.ProtocolDescription,
		Results:             results,
		AnalyzedAt:          time.Now().UTC(),
	}
	a.Fold(report)
	log.Info("compliance analysis completed",
		zap.Int("violations", report.TotalViolations),
		zap.Int("approvals", report.TotalApprovals),
		zap.String("status", string(report.OverallStatus)))
	return report, nil
}

// AnalyzeChunk runs one chunk. Parse failures are recovered into a sentinel result;
// provider failures are returned as *llm.ProviderError.
func (a *Analyzer) AnalyzeChunk(ctx context.Context, chunk string, in Instruction) (models.AnalysisResult, error) {
	name := prompt.Compliance
	params := map[string]string{"chunk": chunk, "domain": in.Domain}
	if strings.TrimSpace(in.Custom) != "" {
		name = prompt.ComplianceCustom
		params["instruction"] = in.Custom
	}
	raw, err := a.client.Render(ctx, name, params, llm.GenerateOptions{})
	if err != nil {
		return models.AnalysisResult{}, err
	}
	result, err := ParseResult(raw, a.maxScan)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return ParseSentinel(raw, perr.Err), nil
		}
		return models.AnalysisResult{}, err
	}
	return result, nil
}

// Fold sets the totals and overall status of r from its results.
func (a *Analyzer) Fold(r *models.Report) {
	r.TotalViolations, r.TotalApprovals = 0, 0
	for _, res := range r.Results {
		r.TotalViolations += len(res.Violations)
		r.TotalApprovals += len(res.Approvals)
	}
	r.OverallStatus = a.thresholds.Status(r.TotalViolations)
}
