package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PabloGalante/postcraft/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	current_version_index INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS versions (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	idx INTEGER NOT NULL,
	topic TEXT NOT NULL,
	text TEXT NOT NULL,
	feedback_applied TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	PRIMARY KEY (session_id, idx)
);
CREATE TABLE IF NOT EXISTS feedback (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY (session_id, position)
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// Store persists sessions in a local SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite CreateSession: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at, current_version_index) VALUES (?, ?, ?, ?)`,
		string(session.ID), session.CreatedAt.UnixNano(), session.UpdatedAt.UnixNano(), session.CurrentVersionIndex)
	if err != nil {
		return fmt.Errorf("sqlite CreateSession: %w", err)
	}
	if err := writeHistory(ctx, tx, session); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveSession rewrites the session and its history in one transaction.
func (s *Store) SaveSession(ctx context.Context, session *domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite SaveSession: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ?, current_version_index = ? WHERE id = ?`,
		session.UpdatedAt.UnixNano(), session.CurrentVersionIndex, string(session.ID))
	if err != nil {
		return fmt.Errorf("sqlite SaveSession: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, session.ID)
	}

	for _, table := range []string{"versions", "feedback"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, string(session.ID)); err != nil {
			return fmt.Errorf("sqlite SaveSession clear %s: %w", table, err)
		}
	}
	if err := writeHistory(ctx, tx, session); err != nil {
		return err
	}
	return tx.Commit()
}

func writeHistory(ctx context.Context, tx *sql.Tx, session *domain.Session) error {
	for _, v := range session.Versions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO versions (session_id, idx, topic, text, feedback_applied, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			string(session.ID), v.Index, v.Topic, v.Text, v.FeedbackApplied, v.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("sqlite insert version %d: %w", v.Index, err)
		}
	}
	for i, fb := range session.FeedbackHistory {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO feedback (session_id, position, text) VALUES (?, ?, ?)`,
			string(session.ID), i, fb)
		if err != nil {
			return fmt.Errorf("sqlite insert feedback %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	var created, updated int64
	session := &domain.Session{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at, current_version_index FROM sessions WHERE id = ?`, string(id)).
		Scan(&created, &updated, &session.CurrentVersionIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("sqlite GetSession: %w", err)
	}
	session.CreatedAt = fromNanos(created)
	session.UpdatedAt = fromNanos(updated)

	if session.Versions, err = s.versions(ctx, id); err != nil {
		return nil, err
	}
	if session.FeedbackHistory, err = s.feedback(ctx, id); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) versions(ctx context.Context, id domain.SessionID) ([]domain.Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, topic, text, feedback_applied, created_at FROM versions WHERE session_id = ? ORDER BY idx`, string(id))
	if err != nil {
		return nil, fmt.Errorf("sqlite versions: %w", err)
	}
	defer rows.Close()

	out := []domain.Version{}
	for rows.Next() {
		var v domain.Version
		var created int64
		if err := rows.Scan(&v.Index, &v.Topic, &v.Text, &v.FeedbackApplied, &created); err != nil {
			return nil, fmt.Errorf("sqlite scan version: %w", err)
		}
		v.CreatedAt = fromNanos(created)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) feedback(ctx context.Context, id domain.SessionID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM feedback WHERE session_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, fmt.Errorf("sqlite feedback: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var fb string
		if err := rows.Scan(&fb); err != nil {
			return nil, fmt.Errorf("sqlite scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

// ListSessions returns the most recently updated sessions first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	q := `SELECT id FROM sessions ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListSessions: %w", err)
	}
	var ids []domain.SessionID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite ListSessions scan: %w", err)
		}
		ids = append(ids, domain.SessionID(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
