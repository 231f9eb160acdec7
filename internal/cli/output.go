// Package cli provides output formatting for the docstudio command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// OutputFormat is the format of command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// ParseOutputFormat accepts "text", "json" or "" (text).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteDocument writes extracted text.
func WriteDocument(w io.Writer, doc *models.ExtractedDocument, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, doc)
	}
	fmt.Fprintf(w, "%s (%s, %d bytes, %d words)\n%s\n%s\n", doc.SourceName, doc.MIMEHint, doc.SizeBytes,
		utils.WordCount(doc.Text), rule, doc.Text)
	return nil
}

// WriteSummary writes a summarize result.
func WriteSummary(w io.Writer, res *agent.SummaryResult, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, res)
	}
	rec := res.Record
	fmt.Fprintf(w, "%s | %s | %d → %d words | %s\n%s\n\n%s\n",
		rec.Filename, rec.SummaryLength, rec.OriginalWordCount, rec.SummaryWordCount, rec.ModelUsed, rule, rec.Summary)
	if len(res.Takeaways) > 0 {
		fmt.Fprintln(w, "\nKey takeaways:")
		for i, t := range res.Takeaways {
			fmt.Fprintf(w, "  %d. %s\n", i+1, t)
		}
	}
	return nil
}

// WriteRecords writes saved summaries, newest first as given.
func WriteRecords(w io.Writer, recs []*models.SummaryRecord, format OutputFormat) error {
	if format == OutputJSON {
		if recs == nil {
			recs = []*models.SummaryRecord{}
		}
		return WriteJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No summaries found.")
		return nil
	}
	fmt.Fprintf(w, "\n%d summaries\n\n", len(recs))
	for _, rec := range recs {
		fmt.Fprintln(w, rule)
		if rec.ID != 0 {
			fmt.Fprintf(w, "#%d ", rec.ID)
		}
		fmt.Fprintf(w, "%s  [%s]  %s\n", rec.Filename, rec.SummaryLength, rec.Date)
		fmt.Fprintf(w, "Model: %s | %d → %d words\n", rec.ModelUsed, rec.OriginalWordCount, rec.SummaryWordCount)
		fmt.Fprintf(w, "\n%s\n\n", TruncateWords(rec.Summary, 60))
	}
	return nil
}

// WriteReport writes a compliance report and the name it would be downloaded as.
func WriteReport(w io.Writer, r *models.Report, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, r)
	}
	fmt.Fprintf(w, "Compliance report %s\n%s\n", agent.ReportFilename(r), rule)
	fmt.Fprintf(w, "Domain: %s\n", r.Domain)
	if r.ProtocolName != "" {
		fmt.Fprintf(w, "Protocol: %s\n", r.ProtocolName)
	}
	fmt.Fprintf(w, "Files: %s\n", strings.Join(r.FilesAnalyzed, ", "))
	for _, f := range r.FilesFailed {
		fmt.Fprintf(w, "Skipped: %s (%s)\n", f.Name, f.Error)
	}
	fmt.Fprintf(w, "Status: %s (%d violations, %d approvals)\n", r.OverallStatus, r.TotalViolations, r.TotalApprovals)
	for i, res := range r.Results {
		fmt.Fprintf(w, "\nChunk %d: %s\n", i+1, res.Summary)
		if res.Sentinel() {
			fmt.Fprintf(w, "  ! %s%s\n", res.ParseError, res.ProviderError)
		}
		for _, a := range res.Approvals {
			fmt.Fprintf(w, "  ✓ %s\n", a)
		}
		for _, v := range res.Violations {
			fmt.Fprintf(w, "  ✗ %s\n", v)
		}
	}
	return nil
}

// WriteStats writes aggregate history statistics.
func WriteStats(w io.Writer, s models.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, s)
	}
	fmt.Fprintf(w, "Documents: %d (today: %d)\n", s.TotalDocuments, s.Today)
	fmt.Fprintf(w, "Words processed: %d\n", s.TotalWords)
	fmt.Fprintf(w, "Average summary: %.1f words\n", s.AverageSummaryWords)
	writeCounts(w, "Models", s.ModelUsage)
	writeCounts(w, "File types", s.FileTypes)
	return nil
}

func writeCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-40s %d\n", k, counts[k])
	}
}

// WriteHits writes ranked history matches and an optional spelling suggestion.
func WriteHits(w io.Writer, query string, hits []keyword.Hit, suggestion string, format OutputFormat) error {
	if format == OutputJSON {
		if hits == nil {
			hits = []keyword.Hit{}
		}
		out := map[string]any{"query": query, "hits": hits}
		if suggestion != "" {
			out["suggestion"] = suggestion
		}
		return WriteJSON(w, out)
	}
	fmt.Fprintf(w, "\nFound %d results for %q\n", len(hits), query)
	if suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s\n", suggestion)
	}
	for i, h := range hits {
		fmt.Fprintf(w, "%2d. [%.4f] #%d %s\n", i+1, h.Score, h.ID, h.Filename)
	}
	return nil
}

// WritePrompts writes saved compliance protocols.
func WritePrompts(w io.Writer, prompts []*models.PromptRecord, format OutputFormat) error {
	if format == OutputJSON {
		if prompts == nil {
			prompts = []*models.PromptRecord{}
		}
		return WriteJSON(w, prompts)
	}
	if len(prompts) == 0 {
		fmt.Fprintln(w, "No saved protocols.")
		return nil
	}
	for _, p := range prompts {
		fmt.Fprintf(w, "#%d %s [%s, %s]\n    %s\n", p.ID, p.ProtocolName, p.SeverityThreshold, p.OutputFormat,
			utils.Truncate(p.ProtocolDescription, 100))
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
