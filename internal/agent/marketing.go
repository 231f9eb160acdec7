package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/prompt"
)

// Banner platforms and styles offered to users.
var (
	Platforms = []string{"Instagram", "Facebook", "LinkedIn", "Twitter", "Custom"}
	Styles    = []string{"Bold & Catchy", "Minimalist", "Professional", "Playful"}
)

// Analysis types accepted by the analyst.
const (
	AnalysisSummary         = "Summary & Insights"
	AnalysisRecommendations = "Recommendations"
	AnalysisAnomalies       = "Anomaly Detection"
)

// AnalysisTypes lists the analysis types in display order.
var AnalysisTypes = []string{AnalysisSummary, AnalysisRecommendations, AnalysisAnomalies}

// ErrNoData is returned when the analyst receives no campaign data.
var ErrNoData = errors.New("no campaign data provided")

// BannerRequest describes a social post to write.
type BannerRequest struct {
	Platform   string `json:"platform"`
	Style      string `json:"style"`
	Brief      string `json:"campaign_brief"`
	KeyMessage string `json:"key_message"`
}

// Validate requires the brief and key message and fills platform and style defaults.
func (r *BannerRequest) Validate() error {
	if strings.TrimSpace(r.Brief) == "" || strings.TrimSpace(r.KeyMessage) == "" {
		return errors.New("campaign_brief and key_message are required")
	}
	if r.Platform == "" {
		r.Platform = Platforms[0]
	}
	if r.Style == "" {
		r.Style = Styles[0]
	}
	if !slices.Contains(Styles, r.Style) {
		return fmt.Errorf("unknown style %q", r.Style)
	}
	return nil
}

// Banner writes social media copy.
type Banner struct {
	client *llm.Client
}

// NewBanner returns a Banner calling client.
func NewBanner(client *llm.Client) *Banner {
	return &Banner{client: client}
}

// Generate returns the post copy for req.
func (b *Banner) Generate(ctx context.Context, req BannerRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return b.client.Render(ctx, prompt.Banner, map[string]string{
		"campaign_brief": req.Brief,
		"platform":       req.Platform,
		"key_message":    req.KeyMessage,
		"style":          req.Style,
	}, llm.GenerateOptions{})
}

// AnalystRequest carries campaign data as CSV text.
type AnalystRequest struct {
	Type string `json:"analysis_type"`
	Goal string `json:"goal,omitempty"`
	Data string `json:"data_csv"`
}

// Analyst reviews campaign performance data.
type Analyst struct {
	client *llm.Client
}

// NewAnalyst returns an Analyst calling client.
func NewAnalyst(client *llm.Client) *Analyst {
	return &Analyst{client: client}
}

// Analyze returns the model's analysis of req.Data. An empty Type means AnalysisSummary.
func (a *Analyst) Analyze(ctx context.Context, req AnalystRequest) (string, error) {
	if strings.TrimSpace(req.Data) == "" {
		return "", ErrNoData
	}
	if req.Type == "" {
		req.Type = AnalysisSummary
	}
	if !slices.Contains(AnalysisTypes, req.Type) {
		return "", fmt.Errorf("unknown analysis type %q", req.Type)
	}
	return a.client.Render(ctx, prompt.Analyst, map[string]string{
		"analysis_type": req.Type,
		"goal":          strings.TrimSpace(req.Goal),
		"data_csv":      req.Data,
	}, llm.GenerateOptions{})
}

// AnalyzeFile converts a CSV or spreadsheet upload to CSV text and analyzes it.
func (a *Analyst) AnalyzeFile(ctx context.Context, name string, content []byte, analysisType, goal string) (string, error) {
	data, err := extract.SheetCSV(name, content)
	if err != nil {
		return "", err
	}
	return a.Analyze(ctx, AnalystRequest{Type: analysisType, Goal: goal, Data: data})
}
