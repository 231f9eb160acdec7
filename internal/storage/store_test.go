package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docstudio/internal/models"
)

func sampleRecord(name, summary string) *models.SummaryRecord {
	return &models.SummaryRecord{
		Filename:          name,
		FileType:          "PDF",
		FileSizeKB:        12.5,
		OriginalWordCount: 1200,
		Summary:           summary,
		SummaryWordCount:  210,
		ModelUsed:         "gpt-3.5-turbo",
		SummaryLength:     "Medium (200-400 words)",
		Date:              "2026-10-19T10:00:00",
		ExtractedText:     "Quarterly revenue, grew \"sharply\"\nacross regions.",
	}
}

func openStores(t *testing.T) []Store {
	t.Helper()
	dir := t.TempDir()
	js, err := NewJSONStore(filepath.Join(dir, "history", "summaries.json"))
	if err != nil {
		t.Fatal(err)
	}
	cs, err := NewCSVStore(filepath.Join(dir, "history", "summaries.csv"))
	if err != nil {
		t.Fatal(err)
	}
	ss, err := NewSQLiteStore(filepath.Join(dir, "history", "summaries.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ss.Close() })
	return []Store{js, cs, ss}
}

func TestStores_AppendListSearch(t *testing.T) {
	ctx := context.Background()
	for _, s := range openStores(t) {
		t.Run(string(s.Backend()), func(t *testing.T) {
			empty, err := s.ListAll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected empty store, got %d", len(empty))
			}

			if err := s.Append(ctx, sampleRecord("report.pdf", "Revenue grew.")); err != nil {
				t.Fatal(err)
			}
			if err := s.Append(ctx, sampleRecord("notes.txt", "Meeting notes, action items.")); err != nil {
				t.Fatal(err)
			}

			all, err := s.ListAll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 {
				t.Fatalf("expected 2 records, got %d", len(all))
			}
			var got *models.SummaryRecord
			for _, r := range all {
				if r.Filename == "report.pdf" {
					got = r
				}
			}
			if got == nil {
				t.Fatal("report.pdf not listed")
			}
			want := sampleRecord("report.pdf", "Revenue grew.")
			if got.Summary != want.Summary || got.ExtractedText != want.ExtractedText ||
				got.FileSizeKB != want.FileSizeKB || got.OriginalWordCount != want.OriginalWordCount ||
				got.SummaryLength != want.SummaryLength || got.Date != want.Date {
				t.Errorf("round trip mismatch: got %+v", got)
			}

			for _, tt := range []struct {
				query string
				want  int
			}{
				{"REPORT", 1},
				{"action items", 1},
				{"sharply", 2},
				{"missing", 0},
			} {
				res, err := s.Search(ctx, tt.query)
				if err != nil {
					t.Fatal(err)
				}
				if len(res) != tt.want {
					t.Errorf("Search(%q) = %d records, want %d", tt.query, len(res), tt.want)
				}
			}

			if err := s.Append(ctx, sampleRecord("ÉCOLE_budget.txt", "Le budget de l'ÉCOLE augmente.")); err != nil {
				t.Fatal(err)
			}
			for _, q := range []string{"école", "ÉCOLE", "École_Budget"} {
				res, err := s.Search(ctx, q)
				if err != nil {
					t.Fatal(err)
				}
				if len(res) != 1 || res[0].Filename != "ÉCOLE_budget.txt" {
					t.Errorf("Search(%q) = %v, want the ÉCOLE record", q, res)
				}
			}
		})
	}
}

func TestStores_AppendRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	for _, s := range openStores(t) {
		if err := s.Append(ctx, &models.SummaryRecord{Filename: "x.txt"}); err == nil {
			t.Errorf("%s: expected error for empty summary", s.Backend())
		}
	}
}

func TestStores_DeleteUnsupported(t *testing.T) {
	ctx := context.Background()
	for _, s := range openStores(t) {
		if s.Backend() == BackendSQLite {
			continue
		}
		_ = s.Append(ctx, sampleRecord("a.pdf", "A"))
		_, err := s.Delete(ctx, "a.pdf")
		var uerr *UnsupportedOperationError
		if !errors.As(err, &uerr) {
			t.Fatalf("%s: expected UnsupportedOperationError, got %v", s.Backend(), err)
		}
		if uerr.Backend != s.Backend() || uerr.Op != "delete" {
			t.Errorf("unexpected error fields: %+v", uerr)
		}
		all, _ := s.ListAll(ctx)
		if len(all) != 1 {
			t.Errorf("%s: delete must not modify the file, have %d records", s.Backend(), len(all))
		}
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"json", BackendJSON, false},
		{" CSV ", BackendCSV, false},
		{"SQLite Database", BackendSQLite, false},
		{"sqlite", BackendSQLite, false},
		{"parquet", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
