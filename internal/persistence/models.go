package persistence

import "time"

// User mirrors the users table. The primary key is the identity supplied by
// the external OAuth provider, not an identifier generated by this service.
type User struct {
	UserID      string
	Username    string
	MailAddress string
}

// Schedule mirrors the schedules table.
type Schedule struct {
	ScheduleID   string
	ScheduleName string
	Memo         string
	CreatedBy    string
	UpdatedAt    time.Time
	Day          *int
	Style        *string
	Term         *string
}

// Availability is a single persisted vote keyed by (schedule, user).
type Availability struct {
	ScheduleID   string
	UserID       string
	Availability int
}

// AvailabilityRow is an availability joined with its voter's profile.
type AvailabilityRow struct {
	Availability
	User User
}

// Session is a server-side login session issued after a federated login.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
