package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/extract"
	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/storage"
)

func newInbox(t *testing.T, maxBytes int64) (*Inbox, *storage.Manager, *llm.MockProvider) {
	t.Helper()
	dir := t.TempDir()
	mgr := storage.NewManager(storage.Paths{
		JSON:   filepath.Join(dir, "s.json"),
		CSV:    filepath.Join(dir, "s.csv"),
		SQLite: filepath.Join(dir, "s.db"),
	})
	t.Cleanup(func() { _ = mgr.Close() })
	mock := llm.NewMockProvider("A short summary.")
	sum := agent.NewSummarizer(llm.NewClient(mock, nil), nil)
	in := NewInbox(extract.NewExtractor(), sum, mgr, InboxConfig{Backend: storage.BackendJSON, Band: models.LengthShort, MaxBytes: maxBytes}, nil)
	return in, mgr, mock
}

func TestInbox_ProcessSavesOnce(t *testing.T) {
	in, mgr, mock := newInbox(t, 0)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("Budget approved for the next quarter."), 0644))

	rec, err := in.Process(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "memo.txt", rec.Filename)
	assert.Equal(t, "Short (100-200 words)", rec.SummaryLength)

	again, err := in.Process(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, again, "unchanged file should be skipped")
	assert.Len(t, mock.Calls(), 1)

	touched := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, touched, touched))
	again, err = in.Process(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, again, "touched but identical file should be skipped")

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(path, []byte("Budget approved, with changes."), 0644))
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = in.Process(ctx, path)
	require.NoError(t, err)

	recs, err := mgr.ListAll(ctx, storage.BackendJSON)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestInbox_Errors(t *testing.T) {
	in, _, _ := newInbox(t, 10)
	ctx := context.Background()
	dir := t.TempDir()

	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte("more than ten bytes"), 0644))
	_, err := in.Process(ctx, big)
	assert.Error(t, err)

	odd := filepath.Join(dir, "x.zzz")
	require.NoError(t, os.WriteFile(odd, []byte("x"), 0644))
	_, err = in.Process(ctx, odd)
	var uerr *extract.UnsupportedFormatError
	assert.ErrorAs(t, err, &uerr)

	_, err = in.Process(ctx, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestInbox_WithWatcher(t *testing.T) {
	in, mgr, _ := newInbox(t, 0)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher([]string{dir}, []string{".txt"}, true, in.Handler(ctx), WithDebounce(50*time.Millisecond))
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("Dropped into the inbox."), 0644))
	waitFor(t, func() bool {
		recs, _ := mgr.ListAll(ctx, storage.BackendJSON)
		return len(recs) == 1
	})
}
