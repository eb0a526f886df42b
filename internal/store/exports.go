package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ExportRecord is one entry of the export log.
type ExportRecord struct {
	Seq           int64  `json:"seq"`
	ExperimentID  string `json:"experimentId"`
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId,omitempty"`
	Filename      string `json:"filename"`
	Format        string `json:"format"`
	ContentHash   string `json:"contentHash"`
	Bytes         int    `json:"bytes"`
	ExportedAt    string `json:"exportedAt"`
}

// RecordExport appends rec to the export log and returns its sequence
// number. rec.Seq is ignored.
func (s *Store) RecordExport(ctx context.Context, rec ExportRecord) (int64, error) {
	var participant sql.NullString
	if rec.ParticipantID != "" {
		participant = sql.NullString{String: rec.ParticipantID, Valid: true}
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO exports
		(experiment_id, session_id, participant, filename, format, content_hash, bytes, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ExperimentID,
		rec.SessionID,
		participant,
		rec.Filename,
		rec.Format,
		rec.ContentHash,
		rec.Bytes,
		rec.ExportedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("record export: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record export: last insert id: %w", err)
	}
	return seq, nil
}

// ListExports returns the export log for an experiment in insertion order.
// Returns an empty slice (not nil) when nothing has been exported.
func (s *Store) ListExports(ctx context.Context, experimentID string) ([]ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, experiment_id, session_id, participant, filename, format, content_hash, bytes, exported_at
		FROM exports
		WHERE experiment_id = ?
		ORDER BY seq ASC
	`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	out := []ExportRecord{}
	for rows.Next() {
		var rec ExportRecord
		var participant sql.NullString
		if err := rows.Scan(
			&rec.Seq,
			&rec.ExperimentID,
			&rec.SessionID,
			&participant,
			&rec.Filename,
			&rec.Format,
			&rec.ContentHash,
			&rec.Bytes,
			&rec.ExportedAt,
		); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		rec.ParticipantID = participant.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return out, nil
}
