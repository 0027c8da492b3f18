package testfixtures

import (
	"testing"
	"time"
)

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entity")

	first := gen.Next()
	second := gen.Next()

	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestFixturesAreDistinct(t *testing.T) {
	a := NewUserFixture()
	b := NewUserFixture()
	if a.UserID == b.UserID {
		t.Fatalf("expected distinct user IDs, both were %q", a.UserID)
	}

	s1 := NewScheduleFixture()
	s2 := NewScheduleFixture()
	if s1.ScheduleID == s2.ScheduleID {
		t.Fatalf("expected distinct schedule IDs, both were %q", s1.ScheduleID)
	}
	if !s2.UpdatedAt.After(s1.UpdatedAt) {
		t.Fatalf("expected increasing UpdatedAt, got %v then %v", s1.UpdatedAt, s2.UpdatedAt)
	}
}

func TestScheduleFixtureOverrides(t *testing.T) {
	when := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	fixture := NewScheduleFixture(
		WithScheduleID("schedule-x"),
		WithScheduleName("打ち合わせ"),
		WithCreatedBy("owner-1"),
		WithUpdatedAt(when),
	)

	schedule := fixture.ToApplication()
	if schedule.ScheduleID != "schedule-x" || schedule.ScheduleName != "打ち合わせ" {
		t.Fatalf("overrides not applied: %+v", schedule)
	}
	if schedule.CreatedBy != "owner-1" || !schedule.UpdatedAt.Equal(when) {
		t.Fatalf("overrides not applied: %+v", schedule)
	}
}
