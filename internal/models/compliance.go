package models

import (
	"fmt"
	"time"
)

// ComplianceStatus is the document-level verdict of a compliance check.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "Compliant"
	StatusNeedsReview  ComplianceStatus = "Needs Review"
	StatusNonCompliant ComplianceStatus = "Non-Compliant"
)

// AnalysisResult is the parsed provider answer for one chunk.
// RawOutput, ParseError and ProviderError are only set on sentinel results.
type AnalysisResult struct {
	Summary       string   `json:"compliance_summary"`
	Approvals     []string `json:"approvals"`
	Violations    []string `json:"violations"`
	RawOutput     string   `json:"raw_output,omitempty"`
	ParseError    string   `json:"parsing_error,omitempty"`
	ProviderError string   `json:"provider_error,omitempty"`
}

// Sentinel reports whether r was substituted for an unusable or missing provider response.
func (r *AnalysisResult) Sentinel() bool {
	return r.ParseError != "" || r.ProviderError != ""
}

// FileFailure names an input that could not be extracted and was left out of a report.
type FileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report is the document-level fold of per-chunk results.
type Report struct {
	ID                  string           `json:"id"`
	Domain              string           `json:"domain"`
	ProtocolName        string           `json:"protocol_name,omitempty"`
	ProtocolDescription string           `json:"protocol_description,omitempty"`
	Results             []AnalysisResult `json:"results"`
	TotalViolations     int              `json:"total_violations"`
	TotalApprovals      int              `json:"total_approvals"`
	OverallStatus       ComplianceStatus `json:"overall_status"`
	FilesAnalyzed       []string         `json:"files_analyzed,omitempty"`
	FilesFailed         []FileFailure    `json:"files_failed,omitempty"`
	AnalyzedAt          time.Time        `json:"analysis_date"`
}

// Severity thresholds a protocol may ask the reviewer to report at.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Output formats a protocol may request.
const (
	OutputSummary    = "Summary"
	OutputJSON       = "JSON"
	OutputChecklist  = "Checklist"
	OutputBulletList = "Bullet List"
)

// PromptRecord is a saved custom compliance protocol.
type PromptRecord struct {
	ID                  int64     `json:"id,omitempty" db:"id"`
	ProtocolName        string    `json:"protocol_name" db:"protocol_name"`
	ProtocolDescription string    `json:"protocol_description" db:"protocol_description"`
	WhatToFlag          string    `json:"what_to_flag" db:"what_to_flag"`
	SeverityThreshold   string    `json:"severity_threshold" db:"severity_threshold"`
	OutputFormat        string    `json:"output_format" db:"output_format"`
	CitationRequired    bool      `json:"citation_required" db:"citation_required"`
	Language            string    `json:"language" db:"language"`
	CreatedAt           time.Time `json:"created_at,omitzero" db:"created_at"`
}

// Validate checks required fields and enumerations, filling defaults for the optional ones.
func (p *PromptRecord) Validate() error {
	if p.ProtocolName == "" {
		return fmt.Errorf("protocol_name cannot be empty")
	}
	if p.ProtocolDescription == "" {
		return fmt.Errorf("protocol_description cannot be empty")
	}
	switch p.SeverityThreshold {
	case "":
		p.SeverityThreshold = SeverityMedium
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return fmt.Errorf("invalid severity_threshold %q", p.SeverityThreshold)
	}
	switch p.OutputFormat {
	case "":
		p.OutputFormat = OutputJSON
	case OutputSummary, OutputJSON, OutputChecklist, OutputBulletList:
	default:
		return fmt.Errorf("invalid output_format %q", p.OutputFormat)
	}
	if p.Language == "" {
		p.Language = "English"
	}
	return nil
}
