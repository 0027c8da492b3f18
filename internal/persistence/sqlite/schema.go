package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates all tables needed by the service. Safe to call repeatedly.
// The statements run in a single transaction so a partially created schema
// never survives a failed startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	return cp.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    mail_address TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
    schedule_id TEXT PRIMARY KEY,
    schedule_name TEXT NOT NULL,
    memo TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    day INTEGER,
    style TEXT,
    term TEXT
);

CREATE INDEX IF NOT EXISTS idx_schedules_created_by ON schedules(created_by);

CREATE TABLE IF NOT EXISTS availabilities (
    schedule_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    availability INTEGER NOT NULL DEFAULT 0 CHECK (availability >= 0),
    PRIMARY KEY (schedule_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_availabilities_schedule_id ON availabilities(schedule_id);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`
