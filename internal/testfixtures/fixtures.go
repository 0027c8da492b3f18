package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akapochi/event-management/internal/application"
	"github.com/akapochi/event-management/internal/persistence"
)

var (
	userCounter     uint64
	scheduleCounter uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserFixture is a deterministic identity-provider profile for tests.
type UserFixture struct {
	UserID      string
	Username    string
	MailAddress string
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		UserID:      fmt.Sprintf("user-%03d", idx),
		Username:    fmt.Sprintf("user%03d", idx),
		MailAddress: fmt.Sprintf("user-%03d@example.com", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.UserID = id }
}

// WithUsername overrides the generated username.
func WithUsername(name string) UserOption {
	return func(f *UserFixture) { f.Username = name }
}

// ToApplication materialises the fixture as an application-layer user.
func (f UserFixture) ToApplication() application.User {
	return application.User{UserID: f.UserID, Username: f.Username, MailAddress: f.MailAddress}
}

// ToPersistence materialises the fixture as a persistence-layer user.
func (f UserFixture) ToPersistence() persistence.User {
	return persistence.User{UserID: f.UserID, Username: f.Username, MailAddress: f.MailAddress}
}

// ScheduleFixture is a deterministic schedule record for tests.
type ScheduleFixture struct {
	ScheduleID   string
	ScheduleName string
	Memo         string
	CreatedBy    string
	UpdatedAt    time.Time
	Day          *int
	Style        *string
	Term         *string
}

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*ScheduleFixture)

// NewScheduleFixture returns a deterministic schedule fixture with optional
// overrides. Each fixture gets a distinct updated_at so list ordering is
// observable in tests.
func NewScheduleFixture(opts ...ScheduleOption) ScheduleFixture {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	fixture := ScheduleFixture{
		ScheduleID:   fmt.Sprintf("schedule-%03d", idx),
		ScheduleName: fmt.Sprintf("Schedule %03d", idx),
		Memo:         "",
		CreatedBy:    fmt.Sprintf("user-%03d", idx),
		UpdatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithScheduleID overrides the generated schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(f *ScheduleFixture) { f.ScheduleID = id }
}

// WithScheduleName overrides the generated schedule name.
func WithScheduleName(name string) ScheduleOption {
	return func(f *ScheduleFixture) { f.ScheduleName = name }
}

// WithCreatedBy overrides the owner of the schedule.
func WithCreatedBy(userID string) ScheduleOption {
	return func(f *ScheduleFixture) { f.CreatedBy = userID }
}

// WithUpdatedAt overrides the modification timestamp.
func WithUpdatedAt(t time.Time) ScheduleOption {
	return func(f *ScheduleFixture) { f.UpdatedAt = t }
}

// ToApplication materialises the fixture as an application-layer schedule.
func (f ScheduleFixture) ToApplication() application.Schedule {
	return application.Schedule{
		ScheduleID:   f.ScheduleID,
		ScheduleName: f.ScheduleName,
		Memo:         f.Memo,
		CreatedBy:    f.CreatedBy,
		UpdatedAt:    f.UpdatedAt,
		Day:          f.Day,
		Style:        f.Style,
		Term:         f.Term,
	}
}

// ToPersistence materialises the fixture as a persistence-layer schedule.
func (f ScheduleFixture) ToPersistence() persistence.Schedule {
	return persistence.Schedule{
		ScheduleID:   f.ScheduleID,
		ScheduleName: f.ScheduleName,
		Memo:         f.Memo,
		CreatedBy:    f.CreatedBy,
		UpdatedAt:    f.UpdatedAt,
		Day:          f.Day,
		Style:        f.Style,
		Term:         f.Term,
	}
}

// SessionFixture is a deterministic session record for tests.
type SessionFixture struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture valid for a day
// past the reference time.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		Token:     fmt.Sprintf("token-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		CreatedAt: referenceTime,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID overrides the session owner.
func WithSessionUserID(userID string) SessionOption {
	return func(f *SessionFixture) { f.UserID = userID }
}

// WithSessionExpiresAt overrides the expiry instant.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = t }
}

// ToApplication materialises the fixture as an application-layer session.
func (f SessionFixture) ToApplication() application.Session {
	return application.Session{Token: f.Token, UserID: f.UserID, ExpiresAt: f.ExpiresAt, CreatedAt: f.CreatedAt}
}

// ToPersistence materialises the fixture as a persistence-layer session.
func (f SessionFixture) ToPersistence() persistence.Session {
	return persistence.Session{Token: f.Token, UserID: f.UserID, ExpiresAt: f.ExpiresAt, CreatedAt: f.CreatedAt}
}
