package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/akapochi/event-management/internal/persistence"
	"github.com/akapochi/event-management/internal/persistence/sqlite"
)

var harnessCounter uint64

// SQLiteHarness provides repository access backed by an in-memory SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool           *sqlite.ConnectionPool
	Users          persistence.UserRepository
	Schedules      persistence.ScheduleRepository
	Availabilities persistence.AvailabilityRepository
	Sessions       persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a migrated in-memory database and the
// repositories over it. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	// A named in-memory database with a shared cache keeps the schema alive
	// across the pool's connections while isolating parallel tests.
	dsn := fmt.Sprintf("file:harness-%d?mode=memory&cache=shared", atomic.AddUint64(&harnessCounter, 1))

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		tb.Fatalf("failed to open sqlite database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate sqlite database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:           pool,
		Users:          sqlite.NewUserRepository(pool),
		Schedules:      sqlite.NewScheduleRepository(pool),
		Availabilities: sqlite.NewAvailabilityRepository(pool),
		Sessions:       sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
