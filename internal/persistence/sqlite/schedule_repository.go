package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akapochi/event-management/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// CreateSchedule inserts a new schedule row.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ScheduleID == "" || schedule.CreatedBy == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO schedules (schedule_id, schedule_name, memo, created_by, updated_at, day, style, term)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		schedule.ScheduleID,
		schedule.ScheduleName,
		schedule.Memo,
		schedule.CreatedBy,
		schedule.UpdatedAt.UTC().Format(time.RFC3339Nano),
		nullInt(schedule.Day),
		nullString(schedule.Style),
		nullString(schedule.Term),
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// GetSchedule retrieves a schedule by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if id == "" {
		return persistence.Schedule{}, persistence.ErrNotFound
	}

	query := `
		SELECT schedule_id, schedule_name, memo, created_by, updated_at, day, style, term
		FROM schedules
		WHERE schedule_id = ?
	`

	schedule, err := scanSchedule(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Schedule{}, persistence.ErrNotFound
		}
		return persistence.Schedule{}, err
	}

	return schedule, nil
}

// UpdateSchedule overwrites the mutable fields of an existing schedule.
// created_by is deliberately absent from the UPDATE: ownership never changes
// after creation, whatever the caller supplies.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ScheduleID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE schedules
		SET schedule_name = ?, memo = ?, updated_at = ?, day = ?, style = ?, term = ?
		WHERE schedule_id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		schedule.ScheduleName,
		schedule.Memo,
		schedule.UpdatedAt.UTC().Format(time.RFC3339Nano),
		nullInt(schedule.Day),
		nullString(schedule.Style),
		nullString(schedule.Term),
		schedule.ScheduleID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// DeleteSchedule removes a schedule row. Deleting an absent row is a no-op.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM schedules WHERE schedule_id = ?", id); err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// ListSchedulesByOwner returns the schedules created by the given user,
// most recently updated first.
func (r *ScheduleRepository) ListSchedulesByOwner(ctx context.Context, ownerID string) ([]persistence.Schedule, error) {
	query := `
		SELECT schedule_id, schedule_name, memo, created_by, updated_at, day, style, term
		FROM schedules
		WHERE created_by = ?
		ORDER BY updated_at DESC, schedule_id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var updatedAtStr string
	var day sql.NullInt64
	var style, term sql.NullString

	err := row.Scan(
		&schedule.ScheduleID,
		&schedule.ScheduleName,
		&schedule.Memo,
		&schedule.CreatedBy,
		&updatedAtStr,
		&day,
		&style,
		&term,
	)
	if err != nil {
		return persistence.Schedule{}, err
	}

	if schedule.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if day.Valid {
		value := int(day.Int64)
		schedule.Day = &value
	}
	if style.Valid {
		schedule.Style = &style.String
	}
	if term.Valid {
		schedule.Term = &term.String
	}

	return schedule, nil
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
