package session

import (
	"context"
	"fmt"
	"time"

	"captioner/internal/caption"
	"captioner/internal/services"
)

// ReplaceSegments swaps the session's whole segment list and records the
// generation metadata in one transaction. On error the previous list stays.
func (s *Store) ReplaceSegments(ctx context.Context, sessionID int64, segments []caption.Segment, gen Generation) error {
	return retryOnBusy(ctx, func() error {
		return s.replaceSegmentsOnce(ctx, sessionID, segments, gen)
	})
}

func (s *Store) replaceSegmentsOnce(ctx context.Context, sessionID int64, segments []caption.Segment, gen Generation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := timestamp(time.Now())
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET
            media_path = COALESCE(?, media_path),
            source = ?, mode = ?, language = ?, model = ?, correlation_id = ?,
            updated_at = ?, generated_at = ?
        WHERE id = ?`,
		nullableString(gen.MediaPath),
		nullableString(string(gen.Source)),
		nullableString(gen.Mode),
		nullableString(gen.Language),
		nullableString(gen.Model),
		nullableString(gen.CorrelationID),
		now, now, sessionID,
	)
	if err != nil {
		return fmt.Errorf("update session %d: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "session", "replace segments", fmt.Sprintf("session id %d", sessionID), nil)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (session_id, position, segment_id, start_seconds, end_seconds, text)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()
	for i, seg := range segments {
		if _, err := stmt.ExecContext(ctx, sessionID, i, seg.ID, seg.Start, seg.End, seg.Text); err != nil {
			return fmt.Errorf("insert segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit segments: %w", err)
	}
	return nil
}

// Segments returns the session's segments in stored order.
func (s *Store) Segments(ctx context.Context, sessionID int64) ([]caption.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT segment_id, start_seconds, end_seconds, text FROM segments
        WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []caption.Segment
	for rows.Next() {
		var seg caption.Segment
		if err := rows.Scan(&seg.ID, &seg.Start, &seg.End, &seg.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return out, nil
}

// UpdateSegmentText replaces one segment's text. Timing is never edited.
func (s *Store) UpdateSegmentText(ctx context.Context, sessionID int64, segmentID, text string) error {
	res, err := s.exec(ctx,
		"UPDATE segments SET text = ? WHERE session_id = ? AND segment_id = ?",
		caption.CleanText(text), sessionID, segmentID)
	if err != nil {
		return fmt.Errorf("update segment %s: %w", segmentID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "session", "edit segment", fmt.Sprintf("segment %q", segmentID), nil)
	}
	return s.touch(ctx, sessionID)
}

// DeleteSegment removes one segment; the rest keep their order.
func (s *Store) DeleteSegment(ctx context.Context, sessionID int64, segmentID string) error {
	res, err := s.exec(ctx, "DELETE FROM segments WHERE session_id = ? AND segment_id = ?", sessionID, segmentID)
	if err != nil {
		return fmt.Errorf("delete segment %s: %w", segmentID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "session", "delete segment", fmt.Sprintf("segment %q", segmentID), nil)
	}
	return s.touch(ctx, sessionID)
}

func (s *Store) touch(ctx context.Context, sessionID int64) error {
	if _, err := s.exec(ctx, "UPDATE sessions SET updated_at = ? WHERE id = ?", timestamp(time.Now()), sessionID); err != nil {
		return fmt.Errorf("touch session %d: %w", sessionID, err)
	}
	return nil
}
