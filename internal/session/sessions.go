package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"captioner/internal/services"
)

const sessionColumns = `s.id, s.name, s.media_path, s.source, s.mode, s.language, s.model,
    s.correlation_id, s.created_at, s.updated_at, s.generated_at,
    (SELECT COUNT(1) FROM segments g WHERE g.session_id = s.id)`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		sess          Session
		mediaPath     sql.NullString
		source        sql.NullString
		mode          sql.NullString
		language      sql.NullString
		model         sql.NullString
		correlationID sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		generatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&sess.ID,
		&sess.Name,
		&mediaPath,
		&source,
		&mode,
		&language,
		&model,
		&correlationID,
		&createdRaw,
		&updatedRaw,
		&generatedRaw,
		&sess.SegmentCount,
	); err != nil {
		return nil, err
	}
	sess.MediaPath = mediaPath.String
	sess.Source = Source(source.String)
	sess.Mode = mode.String
	sess.Language = language.String
	sess.Model = model.String
	sess.CorrelationID = correlationID.String
	sess.CreatedAt = parseTimestamp(createdRaw)
	sess.UpdatedAt = parseTimestamp(updatedRaw)
	sess.GeneratedAt = parseTimestamp(generatedRaw)
	return &sess, nil
}

// Ensure returns the named session, creating it when absent. A non-empty
// mediaPath is recorded on the session.
func (s *Store) Ensure(ctx context.Context, name, mediaPath string) (*Session, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	now := timestamp(time.Now())
	if _, err := s.exec(ctx,
		`INSERT INTO sessions (name, media_path, created_at, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            media_path = COALESCE(excluded.media_path, sessions.media_path)`,
		name, nullableString(mediaPath), now, now,
	); err != nil {
		return nil, fmt.Errorf("ensure session %q: %w", name, err)
	}
	return s.Get(ctx, name)
}

// Get loads a session by name.
func (s *Store) Get(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions s WHERE s.name = ?", name)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "session", "get", fmt.Sprintf("session %q", name), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", name, err)
	}
	return sess, nil
}

// List returns every session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions s ORDER BY s.updated_at DESC, s.id DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Delete removes a session and its segments.
func (s *Store) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	res, err := s.exec(ctx, "DELETE FROM sessions WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "session", "delete", fmt.Sprintf("session %q", name), nil)
	}
	return nil
}
