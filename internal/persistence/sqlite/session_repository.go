package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akapochi/event-management/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession stores a freshly issued session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.Token == "" || session.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var session persistence.Session
	var expiresAtStr, createdAtStr string

	err := r.pool.db.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?", token,
	).Scan(&session.Token, &session.UserID, &expiresAtStr, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapSQLiteError(err)
	}

	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAtStr); err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}

	return session, nil
}

// DeleteSession removes a session by token. Absent tokens are a no-op.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// DeleteExpiredSessions removes every session that expired before reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?", reference.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}
