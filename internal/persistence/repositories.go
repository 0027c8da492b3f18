package persistence

import "context"
import "time"

// UserRepository stores identity-provider profiles.
type UserRepository interface {
	UpsertUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
}

// ScheduleRepository exposes CRUD operations for schedules.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedulesByOwner(ctx context.Context, ownerID string) ([]Schedule, error)
}

// AvailabilityRepository stores per-(schedule, user) votes. Rows only come
// into existence when a user records a status; absence means "undecided".
type AvailabilityRepository interface {
	UpsertAvailability(ctx context.Context, availability Availability) error
	ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]AvailabilityRow, error)
	DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
