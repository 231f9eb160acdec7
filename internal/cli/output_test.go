package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/models"
)

func sampleRecords() []*models.SummaryRecord {
	return []*models.SummaryRecord{
		{ID: 2, Filename: "contract.pdf", Summary: "Two party agreement.", ModelUsed: "gpt-4o (openai)",
			SummaryLength: "Short (100-200 words)", Date: "2026-10-19T09:00:00", OriginalWordCount: 900, SummaryWordCount: 3},
		{ID: 1, Filename: "notes.txt", Summary: "Meeting notes.", ModelUsed: "gpt-4o (openai)"},
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputText, "text": OutputText, "JSON": OutputJSON} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestWriteRecords_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecords(&buf, sampleRecords(), OutputJSON); err != nil {
		t.Fatalf("WriteRecords(json): %v", err)
	}
	var decoded []models.SummaryRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[0].Filename != "contract.pdf" {
		t.Errorf("decoded records = %+v", decoded)
	}
}

func TestWriteRecords_JSON_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecords(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty records: got %q, want []", buf.String())
	}
}

func TestWriteRecords_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecords(&buf, sampleRecords(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"2 summaries", "#2 contract.pdf", "Short (100-200 words)", "900 → 3 words", "Meeting notes."} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	_ = WriteRecords(&buf, nil, OutputText)
	if !strings.Contains(buf.String(), "No summaries found") {
		t.Errorf("empty text output: %q", buf.String())
	}
}

func TestWriteSummary_text(t *testing.T) {
	res := &agent.SummaryResult{Record: sampleRecords()[0], Takeaways: []string{"Signed in May", "Renews yearly"}}
	var buf bytes.Buffer
	if err := WriteSummary(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"contract.pdf", "Two party agreement.", "Key takeaways", "1. Signed in May", "2. Renews yearly"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteReport_text(t *testing.T) {
	r := &models.Report{
		Domain:        "SOC 2",
		FilesAnalyzed: []string{"policy.docx"},
		Results: []models.AnalysisResult{
			{Summary: "Access reviews exist", Approvals: []string{"quarterly review"}, Violations: []string{"no MFA"}},
			{Summary: "Could not parse", ParseError: "invalid JSON", Violations: []string{"unparseable"}},
		},
		TotalViolations: 2,
		TotalApprovals:  1,
		OverallStatus:   models.StatusNeedsReview,
		AnalyzedAt:      time.Date(2026, 10, 19, 10, 15, 0, 0, time.Local),
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"compliance_report_SOC_2_20261019_101500.json", "Status: Needs Review (2 violations, 1 approvals)",
		"✓ quarterly review", "✗ no MFA", "! invalid JSON",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteStats_text(t *testing.T) {
	s := models.Stats{
		TotalDocuments:      3,
		TotalWords:          1200,
		AverageSummaryWords: 150,
		ModelUsage:          map[string]int{"b-model": 1, "a-model": 2},
		FileTypes:           map[string]int{"pdf": 3},
		Today:               1,
	}
	var buf bytes.Buffer
	if err := WriteStats(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Documents: 3 (today: 1)") || !strings.Contains(out, "150.0 words") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
	if strings.Index(out, "a-model") > strings.Index(out, "b-model") {
		t.Errorf("model usage should be sorted:\n%s", out)
	}
}

func TestWriteHits(t *testing.T) {
	hits := []keyword.Hit{{ID: 7, Filename: "invoice.pdf", Score: 1.25}}
	var buf bytes.Buffer
	if err := WriteHits(&buf, "invoise", hits, "invoice", OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{`Found 1 results for "invoise"`, "Did you mean: invoice", "#7 invoice.pdf"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteHits(&buf, "x", nil, "", OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["suggestion"]; ok {
		t.Error("suggestion should be omitted when empty")
	}
}

func TestWritePrompts_text(t *testing.T) {
	var buf bytes.Buffer
	prompts := []*models.PromptRecord{{ID: 3, ProtocolName: "Retention", ProtocolDescription: "Check retention",
		SeverityThreshold: models.SeverityHigh, OutputFormat: models.OutputChecklist}}
	if err := WritePrompts(&buf, prompts, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "#3 Retention [High, Checklist]") {
		t.Errorf("unexpected prompts output:\n%s", buf.String())
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("one two three", 2); got != "one two..." {
		t.Errorf("TruncateWords: got %q", got)
	}
	if got := TruncateWords("one two", 5); got != "one two" {
		t.Errorf("TruncateWords: got %q", got)
	}
}
