package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/compliance"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// TextInputName is recorded as the analyzed file when text was pasted rather than uploaded.
const TextInputName = "text_input"

// PromptLog stores locked protocols.
type PromptLog interface {
	SavePrompt(ctx context.Context, p *models.PromptRecord) error
}

// ReportSink stores finished reports.
type ReportSink interface {
	SaveReport(ctx context.Context, r *models.Report) error
}

// ComplianceAgent checks documents against a domain or a locked protocol.
type ComplianceAgent struct {
	analyzer *compliance.Analyzer
	prompts  *prompt.Builder
	log      PromptLog
	reports  ReportSink
	logger   *zap.Logger
}

// NewComplianceAgent returns an agent using analyzer. log and reports may be nil.
func NewComplianceAgent(analyzer *compliance.Analyzer, prompts *prompt.Builder, log PromptLog, reports ReportSink, logger *zap.Logger) *ComplianceAgent {
	if prompts == nil {
		prompts = prompt.NewBuilder()
	}
	return &ComplianceAgent{
		analyzer: analyzer,
		prompts:  prompts,
		log:      log,
		reports:  reports,
		logger:   utils.LoggerOrNop(logger),
	}
}

// LockProtocol validates rec, appends it to the prompt log and makes it the session's protocol.
func (a *ComplianceAgent) LockProtocol(ctx context.Context, sess *Session, rec *models.PromptRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if a.log != nil {
		if err := a.log.SavePrompt(ctx, rec); err != nil {
			return fmt.Errorf("failed to log protocol: %w", err)
		}
	}
	sess.setProtocol(rec)
	a.logger.Info("protocol locked", zap.String("session", sess.ID), zap.String("protocol", rec.ProtocolName))
	return nil
}

// UseProtocol makes an already saved protocol the session's protocol without logging it again.
func (a *ComplianceAgent) UseProtocol(sess *Session, rec *models.PromptRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	sess.setProtocol(rec)
	a.logger.Info("protocol selected", zap.String("session", sess.ID), zap.String("protocol", rec.ProtocolName), zap.Int64("prompt_id", rec.ID))
	return nil
}

// Check analyzes the concatenated text of docs. The session's locked protocol takes
// precedence over custom, and custom over the built-in domain prompt. sess may be nil.
func (a *ComplianceAgent) Check(ctx context.Context, sess *Session, docs []*models.ExtractedDocument, domain, custom string) (*models.Report, error) {
	in := compliance.Instruction{Domain: domain, Custom: custom}
	if sess != nil {
		if p := sess.Protocol(); p != nil {
			var err error
			if in, err = compliance.ProtocolInstruction(a.prompts, domain, p); err != nil {
				return nil, err
			}
		}
	}

	var text strings.Builder
	files := make([]string, 0, len(docs))
	for _, d := range docs {
		text.WriteString("\n\n")
		text.WriteString(d.Text)
		files = append(files, d.SourceName)
	}
	if len(files) == 0 {
		files = append(files, TextInputName)
	}

	report, err := a.analyzer.Analyze(ctx, text.String(), in)
	if err != nil {
		return nil, err
	}
	report.FilesAnalyzed = files
	if a.reports != nil {
		if err := a.reports.SaveReport(ctx, report); err != nil {
			a.logger.Warn("failed to save compliance report", zap.String("report_id", report.ID), zap.Error(err))
		}
	}
	return report, nil
}

// ReportFilename returns the download name of a report, e.g.
// compliance_report_GDPR_20261019_101500.json.
func ReportFilename(r *models.Report) string {
	domain := strings.ReplaceAll(r.Domain, " ", "_")
	if domain == "" {
		domain = "custom"
	}
	return fmt.Sprintf("compliance_report_%s_%s.json", domain, r.AnalyzedAt.Local().Format("20060102_150405"))
}
