package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestExport creates an export record with minimal required fields.
func createTestExport(experimentID, filename, format string) ExportRecord {
	return ExportRecord{
		ExperimentID: experimentID,
		SessionID:    "sess-1",
		Filename:     filename,
		Format:       format,
		ContentHash:  "1a2b3c4d",
		Bytes:        128,
		ExportedAt:   "2025-01-15T09:30:00.000Z",
	}
}

// recordStore is the behavior shared by Store and Memory.
type recordStore interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	RecordExport(ctx context.Context, rec ExportRecord) (int64, error)
	ListExports(ctx context.Context, experimentID string) ([]ExportRecord, error)
}

// eachStore runs fn against a SQLite store and a Memory store.
func eachStore(t *testing.T, fn func(t *testing.T, s recordStore)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}
