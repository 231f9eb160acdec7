package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docstudio/internal/models"
)

type fakeIndex struct {
	indexed []int64
	deleted []int64
}

func (f *fakeIndex) Index(rec *models.SummaryRecord) error {
	f.indexed = append(f.indexed, rec.ID)
	return nil
}

func (f *fakeIndex) Delete(ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func newManager(t *testing.T, idx RecordIndex) *Manager {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(Paths{
		JSON:   filepath.Join(dir, "s.json"),
		CSV:    filepath.Join(dir, "s.csv"),
		SQLite: filepath.Join(dir, "s.db"),
	}, WithIndex(idx))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_BackendsAreIndependent(t *testing.T) {
	idx := &fakeIndex{}
	m := newManager(t, idx)
	ctx := context.Background()

	if err := m.Append(ctx, BackendJSON, sampleRecord("j.pdf", "json only")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(ctx, BackendSQLite, sampleRecord("s.pdf", "sqlite only")); err != nil {
		t.Fatal(err)
	}

	for b, want := range map[Backend]string{BackendJSON: "j.pdf", BackendSQLite: "s.pdf"} {
		recs, err := m.ListAll(ctx, b)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 1 || recs[0].Filename != want {
			t.Errorf("%s: got %v", b, filenames(recs))
		}
	}
	csvRecs, err := m.ListAll(ctx, BackendCSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(csvRecs) != 0 {
		t.Errorf("csv should be empty, got %d", len(csvRecs))
	}
	if len(idx.indexed) != 1 {
		t.Errorf("only sqlite appends are indexed, got %v", idx.indexed)
	}
}

func TestManager_Delete(t *testing.T) {
	idx := &fakeIndex{}
	m := newManager(t, idx)
	ctx := context.Background()

	_ = m.Append(ctx, BackendSQLite, sampleRecord("d.pdf", "x"))
	n, err := m.Delete(ctx, BackendSQLite, "d.pdf")
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != idx.indexed[0] {
		t.Errorf("index not updated: indexed %v deleted %v", idx.indexed, idx.deleted)
	}

	_, err = m.Delete(ctx, BackendCSV, "d.pdf")
	var uerr *UnsupportedOperationError
	if !errors.As(err, &uerr) {
		t.Errorf("expected UnsupportedOperationError, got %v", err)
	}
}

func TestManager_SearchEmptyListsAll(t *testing.T) {
	m := newManager(t, nil)
	ctx := context.Background()
	_ = m.Append(ctx, BackendCSV, sampleRecord("a.csv", "a"))
	_ = m.Append(ctx, BackendCSV, sampleRecord("b.csv", "b"))
	recs, err := m.Search(ctx, BackendCSV, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d", len(recs))
	}
}

func TestManager_DiskUsage(t *testing.T) {
	m := newManager(t, nil)
	ctx := context.Background()
	_ = m.Append(ctx, BackendJSON, sampleRecord("a.pdf", "a"))
	usage, err := m.DiskUsage()
	if err != nil {
		t.Fatal(err)
	}
	if usage[BackendJSON] == 0 {
		t.Error("json backend should use some bytes")
	}
	if usage[BackendCSV] != 0 {
		t.Errorf("csv backend never opened, got %d", usage[BackendCSV])
	}
}
