package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/store"
)

// Log records completed exports.
type Log interface {
	RecordExport(ctx context.Context, rec store.ExportRecord) (int64, error)
}

// Result describes a written export file.
type Result struct {
	Path   string
	Record store.ExportRecord
}

// WriteFile renders sess in format f into dir, then appends an entry to log.
// The file is written before the log entry so a logged export always
// exists on disk. log may be nil.
func WriteFile(ctx context.Context, dir string, f Format, sess *session.Session, cat *catalog.Catalog, now time.Time, log Log) (*Result, error) {
	data, err := Render(f, sess, cat, now)
	if err != nil {
		return nil, err
	}
	hash, err := cat.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	pid := ""
	if sess.Meta.ParticipantID != nil {
		pid = *sess.Meta.ParticipantID
	}
	name := Filename(cat.Experiment.ID, pid, now, f)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("export: write %s: %w", name, err)
	}

	rec := store.ExportRecord{
		ExperimentID:  cat.Experiment.ID,
		SessionID:     sess.Meta.SessionID,
		ParticipantID: pid,
		Filename:      name,
		Format:        string(f),
		ContentHash:   hash,
		Bytes:         len(data),
		ExportedAt:    session.NewTimestamp(now).String(),
	}
	if log != nil {
		seq, err := log.RecordExport(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		rec.Seq = seq
	}
	slog.Debug("export written", "path", path, "format", f, "bytes", len(data))
	return &Result{Path: path, Record: rec}, nil
}
