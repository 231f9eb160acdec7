package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
)

func answer(approvals, violations int) string {
	a := make([]string, approvals)
	for i := range a {
		a[i] = fmt.Sprintf("%q", fmt.Sprintf("ok %d", i))
	}
	v := make([]string, violations)
	for i := range v {
		v[i] = fmt.Sprintf("%q", fmt.Sprintf("bad %d", i))
	}
	return fmt.Sprintf(`{"compliance_summary":"s","approvals":[%s],"violations":[%s]}`,
		strings.Join(a, ","), strings.Join(v, ","))
}

func TestThresholds_Status(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		violations int
		want       models.ComplianceStatus
	}{
		{0, models.StatusCompliant},
		{1, models.StatusNeedsReview},
		{2, models.StatusNeedsReview},
		{3, models.StatusNeedsReview},
		{4, models.StatusNonCompliant},
		{40, models.StatusNonCompliant},
	}
	for _, tt := range tests {
		if got := th.Status(tt.violations); got != tt.want {
			t.Errorf("Status(%d) = %q, want %q", tt.violations, got, tt.want)
		}
	}

	custom := Thresholds{CompliantMax: 1, NeedsReviewMax: 5}
	assert.Equal(t, models.StatusCompliant, custom.Status(1))
	assert.Equal(t, models.StatusNeedsReview, custom.Status(5))
	assert.Equal(t, models.StatusNonCompliant, custom.Status(6))
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{CompliantMax: -1, NeedsReviewMax: 3}.Validate())
	assert.Error(t, Thresholds{CompliantMax: 4, NeedsReviewMax: 3}.Validate())
}

func TestAnalyze_foldsChunks(t *testing.T) {
	mock := llm.NewMockProvider(answer(2, 1), answer(1, 1))
	a := NewAnalyzer(llm.NewClient(mock, nil), WithChunkSize(5))

	report, err := a.Analyze(context.Background(), "first paragraph\n\nsecond paragraph", Instruction{Domain: "GDPR"})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.TotalViolations)
	assert.Equal(t, 3, report.TotalApprovals)
	assert.Equal(t, models.StatusNeedsReview, report.OverallStatus)
	assert.Equal(t, "GDPR", report.Domain)
	assert.NotEmpty(t, report.ID)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "The applicable framework is GDPR.")
	assert.True(t, strings.HasSuffix(calls[0], "Text to check:\nfirst paragraph"))
	assert.True(t, strings.HasSuffix(calls[1], "Text to check:\nsecond paragraph"))
}

func TestAnalyze_customInstruction(t *testing.T) {
	mock := llm.NewMockProvider(answer(0, 0))
	a := NewAnalyzer(llm.NewClient(mock, nil))

	report, err := a.Analyze(context.Background(), "Policy text", Instruction{Custom: "Flag any mention of passwords."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompliant, report.OverallStatus)
	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0], "Flag any mention of passwords.\n\nPlease output ONLY valid JSON"))
	assert.True(t, strings.HasSuffix(calls[0], "Document to analyze:\nPolicy text"))
}

func TestAnalyze_garbageYieldsSentinelPerChunk(t *testing.T) {
	mock := llm.NewMockProvider("this is not json at all")
	a := NewAnalyzer(llm.NewClient(mock, nil), WithChunkSize(3))

	report, err := a.Analyze(context.Background(), "A\n\nB\n\nC", Instruction{})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	for _, r := range report.Results {
		assert.True(t, r.Sentinel())
		assert.Equal(t, "this is not json at all", r.RawOutput)
		assert.Len(t, r.Violations, 2)
	}
	assert.Equal(t, 6, report.TotalViolations)
	assert.Equal(t, 0, report.TotalApprovals)
	assert.Equal(t, models.StatusNonCompliant, report.OverallStatus)
}

func TestAnalyze_providerFailureIsolated(t *testing.T) {
	mock := llm.NewMockProvider(answer(1, 0)).FailWith(errors.New("timeout"), nil)
	a := NewAnalyzer(llm.NewClient(mock, nil), WithChunkSize(3))

	report, err := a.Analyze(context.Background(), "A\n\nB", Instruction{})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "timeout", report.Results[0].ProviderError)
	assert.Len(t, report.Results[0].Violations, 1)
	assert.False(t, report.Results[1].Sentinel())
	assert.Equal(t, 1, report.TotalViolations)
	assert.Equal(t, 1, report.TotalApprovals)
}

func TestAnalyze_allProviderFailures(t *testing.T) {
	cause := errors.New("connection refused")
	mock := llm.NewMockProvider().FailWith(cause, cause)
	a := NewAnalyzer(llm.NewClient(mock, nil), WithChunkSize(3))

	_, err := a.Analyze(context.Background(), "A\n\nB", Instruction{})
	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, cause)
}

func TestAnalyze_emptyText(t *testing.T) {
	a := NewAnalyzer(llm.NewClient(llm.NewMockProvider(), nil))
	_, err := a.Analyze(context.Background(), " \n\n ", Instruction{})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAnalyze_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAnalyzer(llm.NewClient(llm.NewMockProvider(answer(0, 0)), nil))
	_, err := a.Analyze(ctx, "text", Instruction{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProtocolInstruction(t *testing.T) {
	rec := &models.PromptRecord{
		ProtocolName:        "Access Control",
		ProtocolDescription: "All admin access requires MFA",
		WhatToFlag:          "Shared accounts",
		CitationRequired:    true,
	}
	in, err := ProtocolInstruction(prompt.NewBuilder(), "SOC 2", rec)
	require.NoError(t, err)
	assert.Equal(t, "SOC 2", in.Domain)
	assert.Equal(t, "Access Control", in.ProtocolName)
	assert.Contains(t, in.Custom, "What to Flag: Shared accounts")
	assert.Contains(t, in.Custom, "Citation Required: Yes")
	assert.Contains(t, in.Custom, "Severity Threshold: Medium")

	_, err = ProtocolInstruction(prompt.NewBuilder(), "", &models.PromptRecord{})
	assert.Error(t, err)
}

func TestLookupDomain(t *testing.T) {
	d, ok := LookupDomain("soc 2")
	require.True(t, ok)
	assert.Equal(t, "SOC 2", d.Name)
	_, ok = LookupDomain("SOX")
	assert.False(t, ok)
}
