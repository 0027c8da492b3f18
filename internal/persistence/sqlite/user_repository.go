package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akapochi/event-management/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// UpsertUser atomically creates or overwrites the profile row for user_id.
// Last write wins; repeat calls with different profile data are not an error.
func (r *UserRepository) UpsertUser(ctx context.Context, user persistence.User) error {
	if user.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (user_id, username, mail_address)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			mail_address = excluded.mail_address
	`

	if _, err := r.pool.db.ExecContext(ctx, query, user.UserID, user.Username, user.MailAddress); err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	var user persistence.User
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT user_id, username, mail_address FROM users WHERE user_id = ?", id,
	).Scan(&user.UserID, &user.Username, &user.MailAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapSQLiteError(err)
	}

	return user, nil
}
