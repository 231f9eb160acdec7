package compliance

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/pkg/utils"
)

const (
	sentinelSummary  = "Parsing Error: The LLM did not return valid JSON. Treating as non-compliant."
	rawExcerptLength = 200
)

var errNoJSONObject = errors.New("no JSON object found in response")

// ParseError reports a provider answer that could not be read as a chunk result.
// It is always recovered into a sentinel result by the Analyzer.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse compliance response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseResult reads a provider answer as an AnalysisResult. Code fences are removed,
// the first balanced object is located with a scan bounded by maxScan bytes, decoded
// and validated. Failures are returned as *ParseError.
func ParseResult(raw string, maxScan int) (models.AnalysisResult, error) {
	body, ok := ExtractJSONObject(StripCodeFences(raw), maxScan)
	if !ok {
		return models.AnalysisResult{}, &ParseError{Raw: raw, Err: errNoJSONObject}
	}
	var generic any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return models.AnalysisResult{}, &ParseError{Raw: raw, Err: err}
	}
	if err := validateResult(generic); err != nil {
		return models.AnalysisResult{}, &ParseError{Raw: raw, Err: err}
	}
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return models.AnalysisResult{}, &ParseError{Raw: raw, Err: err}
	}
	result.RawOutput, result.ParseError, result.ProviderError = "", "", ""
	if result.Approvals == nil {
		result.Approvals = []string{}
	}
	if result.Violations == nil {
		result.Violations = []string{}
	}
	return result, nil
}

// ParseSentinel is the result substituted for an answer that failed to parse.
// It carries two violations: an excerpt of the raw output and the parse error.
func ParseSentinel(raw string, err error) models.AnalysisResult {
	return models.AnalysisResult{
		Summary:   sentinelSummary,
		Approvals: []string{},
		Violations: []string{
			fmt.Sprintf("LLM output could not be parsed as JSON. Raw output: %s...", utils.Head(raw, rawExcerptLength)),
			fmt.Sprintf("Parsing error: %v", err),
		},
		RawOutput:  raw,
		ParseError: err.Error(),
	}
}

// ProviderSentinel is the result recorded for a chunk whose provider call failed.
func ProviderSentinel(err error) models.AnalysisResult {
	return models.AnalysisResult{
		Summary:       "Provider Error: the chunk could not be analyzed. Treating as non-compliant.",
		Approvals:     []string{},
		Violations:    []string{fmt.Sprintf("Provider error: %v", err)},
		ProviderError: err.Error(),
	}
}
