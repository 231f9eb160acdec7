package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/docstudio/internal/models"
)

const testConfig = `
llm:
  provider: mock
storage:
  backend: sqlite
  json_path: ./history/summaries.json
  csv_path: ./history/summaries.csv
  database_path: ./history/summaries.db
  bleve_index_path: ./history/index.bleve
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := run(t, configPath, args...)
	if err != nil {
		t.Fatalf("docstudio %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
llm:
  provider: mock
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if filepath.Base(cfg.Storage.DatabasePath) != "test.db" || !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database path should be resolved against the config dir, got %s", cfg.Storage.DatabasePath)
	}
}

func TestLoadConfig_missingDefaultUsesDefaults(t *testing.T) {
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Compliance.ChunkSize == 0 {
		t.Errorf("expected defaults, got server=%+v compliance=%+v", cfg.Server, cfg.Compliance)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
llm:
  provider: ollama
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func TestLoadConfig_rejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 70000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadConfig(configPath); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "/nonexistent/config.yaml", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "docstudio version dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestSummarizeAndHistory(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "summarize", "--text", "The board approved the budget for next year.", "--name", "minutes.txt", "-o", "json")
	var res struct {
		Record models.SummaryRecord `json:"record"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("summarize output is not JSON: %v\n%s", err, out)
	}
	if res.Record.Filename != "minutes.txt" || res.Record.ModelUsed != "mock-model (mock)" {
		t.Errorf("unexpected record: %+v", res.Record)
	}

	out = mustRun(t, cfg, "history", "list")
	if !strings.Contains(out, "1 summaries") || !strings.Contains(out, "minutes.txt") {
		t.Errorf("history list output:\n%s", out)
	}

	out = mustRun(t, cfg, "history", "find", "budget")
	if !strings.Contains(out, "minutes.txt") {
		t.Errorf("history find output:\n%s", out)
	}

	out = mustRun(t, cfg, "history", "stats", "-o", "json")
	var stats models.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocuments != 1 {
		t.Errorf("stats total = %d, want 1", stats.TotalDocuments)
	}

	out = mustRun(t, cfg, "history", "export", "--format", "csv")
	if !strings.HasPrefix(out, "filename,") {
		t.Errorf("csv export should start with the header:\n%s", out)
	}

	if _, err := run(t, cfg, "history", "delete", "minutes.txt", "--backend", "json"); err == nil {
		t.Error("delete on the json backend should fail")
	}
	out = mustRun(t, cfg, "history", "delete", "minutes.txt")
	if !strings.Contains(out, "Deleted 1 summaries") {
		t.Errorf("delete output:\n%s", out)
	}
	out = mustRun(t, cfg, "history", "reindex")
	if !strings.Contains(out, "Indexed 0 summaries") {
		t.Errorf("reindex output:\n%s", out)
	}
}

func TestSummarize_FileToJSONBackend(t *testing.T) {
	cfg := writeConfig(t)
	doc := filepath.Join(t.TempDir(), "memo.md")
	if err := os.WriteFile(doc, []byte("# Memo\n\nShip on Friday."), 0600); err != nil {
		t.Fatal(err)
	}
	mustRun(t, cfg, "summarize", doc, "--backend", "json", "--length", "short")

	out := mustRun(t, cfg, "history", "list", "--backend", "json")
	if !strings.Contains(out, "memo.md") {
		t.Errorf("json history should contain memo.md:\n%s", out)
	}
	out = mustRun(t, cfg, "history", "list")
	if !strings.Contains(out, "No summaries found") {
		t.Errorf("sqlite history should be empty:\n%s", out)
	}
}

func TestComplyWithSavedProtocol(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "comply", "--text", "Card numbers are stored in plain text.", "--domain", "pci-dss", "-o", "json")
	var report models.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("comply output is not JSON: %v\n%s", err, out)
	}
	if report.Domain != "PCI-DSS" || report.OverallStatus != models.StatusCompliant {
		t.Errorf("unexpected report: %+v", report)
	}

	out = mustRun(t, cfg, "prompts", "add", "--name", "Retention", "--description", "Data must be deleted after 30 days")
	if !strings.Contains(out, "Saved protocol #1 Retention") {
		t.Errorf("prompts add output:\n%s", out)
	}
	out = mustRun(t, cfg, "prompts", "list")
	if !strings.Contains(out, "#1 Retention") {
		t.Errorf("prompts list output:\n%s", out)
	}

	reportPath := filepath.Join(t.TempDir(), "report.json")
	out = mustRun(t, cfg, "comply", "--text", "We keep logs forever.", "--protocol", "1", "--report-out", reportPath)
	if !strings.Contains(out, "Protocol: Retention") {
		t.Errorf("comply output should name the protocol:\n%s", out)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report file not written: %v", err)
	}

	out = mustRun(t, cfg, "history", "reports")
	if strings.Count(out, "violations") != 2 {
		t.Errorf("expected two saved reports:\n%s", out)
	}

	if _, err := run(t, cfg, "comply", "--protocol", "42", "--text", "x"); err == nil {
		t.Error("unknown protocol id should fail")
	}
	if _, err := run(t, cfg, "comply"); err == nil {
		t.Error("comply without input should fail")
	}
}

func TestComplySkipsUnreadableFiles(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "policy.txt")
	broken := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(good, []byte("Consent is recorded before processing."), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(broken, []byte("this is not a pdf"), 0600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, cfg, "comply", good, broken, "-o", "json")
	var report models.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("comply output is not JSON: %v\n%s", err, out)
	}
	if len(report.FilesAnalyzed) != 1 || report.FilesAnalyzed[0] != "policy.txt" {
		t.Errorf("FilesAnalyzed = %v, want [policy.txt]", report.FilesAnalyzed)
	}
	if len(report.FilesFailed) != 1 || report.FilesFailed[0].Name != "scan.pdf" {
		t.Errorf("FilesFailed = %+v, want scan.pdf", report.FilesFailed)
	}

	out = mustRun(t, cfg, "comply", good, broken)
	if !strings.Contains(out, "Skipped: scan.pdf") {
		t.Errorf("text report should list the skipped file:\n%s", out)
	}

	if _, err := run(t, cfg, "comply", broken, broken); err == nil {
		t.Error("comply should fail when no file can be extracted")
	}
}

func TestExtractBannerAnalyze(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "campaign.csv")
	if err := os.WriteFile(csvPath, []byte("campaign,clicks\nspring,120\nsummer,80\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, cfg, "extract", csvPath)
	if !strings.Contains(out, "campaign.csv") || !strings.Contains(out, "spring") {
		t.Errorf("extract output:\n%s", out)
	}

	if _, err := run(t, cfg, "banner", "--brief", "Summer sale"); err == nil {
		t.Error("banner without --message should fail")
	}
	out = mustRun(t, cfg, "banner", "--brief", "Summer sale", "--message", "30% off", "-o", "json")
	if !strings.Contains(out, `"platform": "Instagram"`) {
		t.Errorf("banner output:\n%s", out)
	}

	out = mustRun(t, cfg, "analyze", csvPath, "--goal", "more clicks")
	if strings.TrimSpace(out) == "" {
		t.Error("analyze should print the analysis")
	}

	out = mustRun(t, cfg, "domains")
	if !strings.Contains(out, "HIPAA") {
		t.Errorf("domains output:\n%s", out)
	}
}
