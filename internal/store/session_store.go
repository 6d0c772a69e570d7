package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/parliament/internal/model"
)

// SessionStore handles database operations for sessions
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get retrieves a session by its ID, e.g. "41-1"
func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT id, name, start, "end" FROM core_session WHERE id = $1`

	var sess model.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(&sess.ID, &sess.Name, &sess.Start, &sess.End)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	return &sess, nil
}

// Current retrieves the sitting session, falling back to the latest one
func (s *SessionStore) Current(ctx context.Context) (*model.Session, error) {
	query := `
		SELECT id, name, start, "end"
		FROM core_session
		ORDER BY ("end" IS NULL) DESC, start DESC
		LIMIT 1
	`

	var sess model.Session
	err := s.db.QueryRowContext(ctx, query).Scan(&sess.ID, &sess.Name, &sess.Start, &sess.End)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current session: %w", err)
	}

	return &sess, nil
}

// WithBills retrieves every session that has bills, newest first
func (s *SessionStore) WithBills(ctx context.Context) ([]model.Session, error) {
	query := `
		SELECT s.id, s.name, s.start, s."end"
		FROM core_session s
		WHERE EXISTS (SELECT 1 FROM bills_billinsession x WHERE x.session_id = s.id)
		ORDER BY s.start DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions with bills: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Start, &sess.End); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}
