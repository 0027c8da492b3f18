package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// UserProfile carries the identity attributes supplied by the external
// OAuth provider after a successful login.
type UserProfile struct {
	UserID      string
	Username    string
	MailAddress string
}

// User represents a stored identity-provider profile.
type User struct {
	UserID      string
	Username    string
	MailAddress string
}

// Availability status codes. Zero is the implicit state of every user who has
// never voted; it is materialised in views but never persisted on its own.
const (
	AvailabilityUndecided = 0
	AvailabilityAbsent    = 1
	AvailabilityPresent   = 2
	AvailabilityUncertain = 3
)

// ScheduleStyle values accepted for the optional style field.
const (
	ScheduleStyleRealtime = "リアルタイム"
	ScheduleStyleOnDemand = "オンデマンド"
)

// Schedule represents a persisted event with its candidate conditions.
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

// ScheduleInput captures caller provided schedule fields. CreatedBy is
// intentionally absent: ownership is derived from the acting user on create
// and immutable afterwards.
type ScheduleInput struct {
	ScheduleName string
	Memo         string
	Day          *int
	Style        *string
	Term         *string
}

// RosterEntry is one user in an assembled schedule view, annotated with the
// effective availability (persisted value, or undecided when no row exists).
type RosterEntry struct {
	UserID       string
	Username     string
	MailAddress  string
	IsSelf       bool
	Availability int
}

// AvailabilityEntry is a persisted vote joined with the voter's profile.
type AvailabilityEntry struct {
	User         User
	Availability int
}

// ScheduleView is the presentation-ready aggregate for one schedule: the
// schedule itself plus the roster of viewer and voters. Assembly is
// side-effect free; default statuses exist only in this value.
type ScheduleView struct {
	Schedule       Schedule
	Users          []RosterEntry
	MyAvailability int
	CreatedBy      string
}

// Session represents an authenticated session issued after federated login.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
