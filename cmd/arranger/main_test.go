package main

import (
	"context"
	"testing"

	"github.com/akapochi/event-management/internal/application"
	"github.com/akapochi/event-management/internal/persistence"
)

type availabilityRepoFake struct {
	rows []persistence.AvailabilityRow
}

func (f *availabilityRepoFake) UpsertAvailability(ctx context.Context, availability persistence.Availability) error {
	return nil
}

func (f *availabilityRepoFake) ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]persistence.AvailabilityRow, error) {
	return f.rows, nil
}

func (f *availabilityRepoFake) DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error {
	return nil
}

func TestAvailabilityRepositoryAdapterMapsJoinedRows(t *testing.T) {
	t.Parallel()

	fake := &availabilityRepoFake{rows: []persistence.AvailabilityRow{
		{
			Availability: persistence.Availability{ScheduleID: "schedule-1", UserID: "u1", Availability: 2},
			User:         persistence.User{UserID: "u1", Username: "alice", MailAddress: "alice@example.com"},
		},
		{
			Availability: persistence.Availability{ScheduleID: "schedule-1", UserID: "u2", Availability: 1},
			User:         persistence.User{UserID: "u2", Username: "bob"},
		},
	}}

	adapter := newAvailabilityRepositoryAdapter(fake)

	entries, err := adapter.ListAvailabilitiesForSchedule(context.Background(), "schedule-1")
	if err != nil {
		t.Fatalf("ListAvailabilitiesForSchedule returned error: %v", err)
	}

	want := []application.AvailabilityEntry{
		{User: application.User{UserID: "u1", Username: "alice", MailAddress: "alice@example.com"}, Availability: 2},
		{User: application.User{UserID: "u2", Username: "bob"}, Availability: 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

type scheduleRepoFake struct {
	stored persistence.Schedule
}

func (f *scheduleRepoFake) CreateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	f.stored = schedule
	return nil
}

func (f *scheduleRepoFake) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	return f.stored, nil
}

func (f *scheduleRepoFake) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	f.stored = schedule
	return nil
}

func (f *scheduleRepoFake) DeleteSchedule(ctx context.Context, id string) error {
	return nil
}

func (f *scheduleRepoFake) ListSchedulesByOwner(ctx context.Context, ownerID string) ([]persistence.Schedule, error) {
	return []persistence.Schedule{f.stored}, nil
}

func TestScheduleRepositoryAdapterRoundTrips(t *testing.T) {
	t.Parallel()

	day := 15
	adapter := newScheduleRepositoryAdapter(&scheduleRepoFake{})

	created, err := adapter.CreateSchedule(context.Background(), application.Schedule{
		ScheduleID:   "schedule-1",
		ScheduleName: "Standup",
		CreatedBy:    "u1",
		Day:          &day,
	})
	if err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}

	if created.ScheduleID != "schedule-1" || created.CreatedBy != "u1" {
		t.Fatalf("unexpected schedule: %+v", created)
	}
	if created.Day == nil || *created.Day != day {
		t.Fatalf("optional field lost in adapter: %+v", created)
	}
}
