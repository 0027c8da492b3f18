package sqlite

import (
	"context"

	"github.com/akapochi/event-management/internal/persistence"
)

// AvailabilityRepository implements persistence.AvailabilityRepository using SQLite.
type AvailabilityRepository struct {
	pool *ConnectionPool
}

// NewAvailabilityRepository creates a new SQLite availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// UpsertAvailability creates or overwrites the vote for (schedule, user).
func (r *AvailabilityRepository) UpsertAvailability(ctx context.Context, availability persistence.Availability) error {
	if availability.ScheduleID == "" || availability.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO availabilities (schedule_id, user_id, availability)
		VALUES (?, ?, ?)
		ON CONFLICT(schedule_id, user_id) DO UPDATE SET
			availability = excluded.availability
	`

	if _, err := r.pool.db.ExecContext(ctx, query,
		availability.ScheduleID, availability.UserID, availability.Availability); err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// ListAvailabilitiesForSchedule returns every persisted vote for a schedule
// joined with the voter's profile, ordered by username ascending with ties
// broken by user_id so the ordering is deterministic.
func (r *AvailabilityRepository) ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]persistence.AvailabilityRow, error) {
	query := `
		SELECT a.schedule_id, a.user_id, a.availability, u.user_id, u.username, u.mail_address
		FROM availabilities a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.schedule_id = ?
		ORDER BY u.username ASC, u.user_id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var result []persistence.AvailabilityRow
	for rows.Next() {
		var row persistence.AvailabilityRow
		if err := rows.Scan(
			&row.ScheduleID,
			&row.UserID,
			&row.Availability.Availability,
			&row.User.UserID,
			&row.User.Username,
			&row.User.MailAddress,
		); err != nil {
			return nil, mapSQLiteError(err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return result, nil
}

// DeleteAvailabilitiesForSchedule removes every vote for a schedule. It is
// the child step of the aggregate delete and must complete before the parent
// schedule row is removed. Deleting when no rows exist is a no-op.
func (r *AvailabilityRepository) DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error {
	if scheduleID == "" {
		return nil
	}

	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM availabilities WHERE schedule_id = ?", scheduleID); err != nil {
		return mapSQLiteError(err)
	}

	return nil
}
