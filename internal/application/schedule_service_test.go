package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akapochi/event-management/internal/persistence"
)

type scheduleRepoStub struct {
	schedule  Schedule
	getErr    error
	created   Schedule
	createErr error
	updated   Schedule
	updateErr error
	deleteErr error
	list      []Schedule
	listErr   error
	calls     *[]string
}

func (s *scheduleRepoStub) CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	if s.createErr != nil {
		return Schedule{}, s.createErr
	}
	s.created = schedule
	return schedule, nil
}

func (s *scheduleRepoStub) GetSchedule(ctx context.Context, id string) (Schedule, error) {
	if s.getErr != nil {
		return Schedule{}, s.getErr
	}
	if s.schedule.ScheduleID == "" || s.schedule.ScheduleID != id {
		return Schedule{}, persistence.ErrNotFound
	}
	return s.schedule, nil
}

func (s *scheduleRepoStub) UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	if s.updateErr != nil {
		return Schedule{}, s.updateErr
	}
	s.updated = schedule
	return schedule, nil
}

func (s *scheduleRepoStub) DeleteSchedule(ctx context.Context, id string) error {
	if s.calls != nil {
		*s.calls = append(*s.calls, "delete schedule")
	}
	return s.deleteErr
}

func (s *scheduleRepoStub) ListSchedulesByOwner(ctx context.Context, ownerID string) ([]Schedule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.list) == 0 {
		return nil, nil
	}
	out := make([]Schedule, len(s.list))
	copy(out, s.list)
	return out, nil
}

type availabilityStoreStub struct {
	entries   []AvailabilityEntry
	listErr   error
	deleteErr error
	calls     *[]string
}

func (a *availabilityStoreStub) ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]AvailabilityEntry, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]AvailabilityEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}

func (a *availabilityStoreStub) DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error {
	if a.calls != nil {
		*a.calls = append(*a.calls, "delete availabilities")
	}
	return a.deleteErr
}

type userDirectoryStub struct {
	users map[string]User
	err   error
}

func (u *userDirectoryStub) GetUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	user, ok := u.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func fixedTime() time.Time {
	return time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
}

func newTestScheduleService(repo *scheduleRepoStub, store *availabilityStoreStub, users *userDirectoryStub, adminID string) *ScheduleService {
	return NewScheduleService(
		repo,
		store,
		users,
		OwnershipPolicy{AdminUserID: adminID},
		func() string { return "schedule-1" },
		fixedTime,
	)
}

func TestCreateScheduleSetsOwnerAndGeneratedID(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{}
	svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	schedule, err := svc.CreateSchedule(context.Background(), "u1", ScheduleInput{ScheduleName: "スタンドアップ", Memo: "毎朝"})
	if err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}

	if schedule.ScheduleID != "schedule-1" {
		t.Fatalf("expected generated id schedule-1, got %q", schedule.ScheduleID)
	}
	if schedule.CreatedBy != "u1" {
		t.Fatalf("expected owner u1, got %q", schedule.CreatedBy)
	}
	if !schedule.UpdatedAt.Equal(fixedTime()) {
		t.Fatalf("expected injected timestamp, got %v", schedule.UpdatedAt)
	}
	if repo.created.ScheduleName != "スタンドアップ" || repo.created.Memo != "毎朝" {
		t.Fatalf("repository received unexpected schedule: %+v", repo.created)
	}
}

func TestCreateScheduleTruncatesLongName(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{}
	svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	name := strings.Repeat("あ", 300)
	schedule, err := svc.CreateSchedule(context.Background(), "u1", ScheduleInput{ScheduleName: name})
	if err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}

	got := []rune(schedule.ScheduleName)
	if len(got) != 255 {
		t.Fatalf("expected 255 runes after truncation, got %d", len(got))
	}
	if string(got) != strings.Repeat("あ", 255) {
		t.Fatalf("truncation altered name content")
	}
}

func TestCreateScheduleSubstitutesPlaceholderName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "   ", "\t\n", strings.Repeat(" ", 300)} {
		repo := &scheduleRepoStub{}
		svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "")

		schedule, err := svc.CreateSchedule(context.Background(), "u1", ScheduleInput{ScheduleName: name})
		if err != nil {
			t.Fatalf("CreateSchedule(%q) returned error: %v", name, err)
		}
		if schedule.ScheduleName != UnnamedScheduleName {
			t.Fatalf("CreateSchedule(%q) stored %q, expected placeholder", name, schedule.ScheduleName)
		}
	}
}

func TestCreateScheduleRequiresActor(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleRepoStub{}, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	if _, err := svc.CreateSchedule(context.Background(), "", ScheduleInput{ScheduleName: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateScheduleValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleRepoStub{}, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	badStyle := "ハイブリッド"
	badDay := 32

	_, err := svc.CreateSchedule(context.Background(), "u1", ScheduleInput{
		ScheduleName: "x",
		Style:        &badStyle,
		Day:          &badDay,
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["style"]; !ok {
		t.Fatalf("expected style field error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["day"]; !ok {
		t.Fatalf("expected day field error, got %v", vErr.FieldErrors)
	}
}

func TestUpdateSchedulePreservesIdentityAndOwner(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{schedule: Schedule{
		ScheduleID:   "schedule-1",
		ScheduleName: "旧名",
		CreatedBy:    "u1",
		UpdatedAt:    fixedTime().Add(-time.Hour),
	}}
	svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "admin")

	updated, err := svc.UpdateSchedule(context.Background(), "admin", "schedule-1", ScheduleInput{ScheduleName: "新名", Memo: "memo"})
	if err != nil {
		t.Fatalf("UpdateSchedule returned error: %v", err)
	}

	if updated.ScheduleID != "schedule-1" {
		t.Fatalf("schedule id changed to %q", updated.ScheduleID)
	}
	if updated.CreatedBy != "u1" {
		t.Fatalf("owner changed to %q; CreatedBy must survive every update", updated.CreatedBy)
	}
	if updated.ScheduleName != "新名" || updated.Memo != "memo" {
		t.Fatalf("mutable fields not applied: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(fixedTime()) {
		t.Fatalf("expected refreshed timestamp, got %v", updated.UpdatedAt)
	}
}

func TestUpdateScheduleAppliesNameRules(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", ScheduleName: "旧名", CreatedBy: "u1"}}
	svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	updated, err := svc.UpdateSchedule(context.Background(), "u1", "schedule-1", ScheduleInput{ScheduleName: "   "})
	if err != nil {
		t.Fatalf("UpdateSchedule returned error: %v", err)
	}
	if updated.ScheduleName != UnnamedScheduleName {
		t.Fatalf("expected placeholder name, got %q", updated.ScheduleName)
	}
}

func TestUpdateScheduleHidesUnauthorizedAndMissingAlike(t *testing.T) {
	t.Parallel()

	cases := map[string]*scheduleRepoStub{
		"missing schedule": {},
		"foreign schedule": {schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}},
	}

	for name, repo := range cases {
		svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "admin")

		_, err := svc.UpdateSchedule(context.Background(), "u2", "schedule-1", ScheduleInput{ScheduleName: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
		if repo.updated.ScheduleID != "" {
			t.Fatalf("%s: update must not reach the repository", name)
		}
	}
}

func TestGetScheduleForEditHidesUnauthorizedAndMissingAlike(t *testing.T) {
	t.Parallel()

	owned := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}}
	svc := newTestScheduleService(owned, &availabilityStoreStub{}, &userDirectoryStub{}, "admin")

	if _, err := svc.GetScheduleForEdit(context.Background(), "u2", "schedule-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign schedule: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetScheduleForEdit(context.Background(), "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing schedule: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetScheduleForEdit(context.Background(), "u1", "schedule-1"); err != nil {
		t.Fatalf("owner: unexpected error %v", err)
	}
	if _, err := svc.GetScheduleForEdit(context.Background(), "admin", "schedule-1"); err != nil {
		t.Fatalf("admin: unexpected error %v", err)
	}
}

func TestGetScheduleViewPutsViewerFirstWithDefaultStatus(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", ScheduleName: "Standup", CreatedBy: "u1"}}
	store := &availabilityStoreStub{entries: []AvailabilityEntry{
		{User: User{UserID: "u2", Username: "bob"}, Availability: AvailabilityPresent},
		{User: User{UserID: "u3", Username: "carol"}, Availability: AvailabilityAbsent},
	}}
	users := &userDirectoryStub{users: map[string]User{
		"viewer": {UserID: "viewer", Username: "alice", MailAddress: "alice@example.com"},
	}}

	svc := newTestScheduleService(repo, store, users, "")

	view, err := svc.GetScheduleView(context.Background(), "schedule-1", "viewer")
	if err != nil {
		t.Fatalf("GetScheduleView returned error: %v", err)
	}

	if len(view.Users) != 3 {
		t.Fatalf("expected 3 roster entries, got %d", len(view.Users))
	}
	first := view.Users[0]
	if first.UserID != "viewer" || !first.IsSelf {
		t.Fatalf("expected viewer first with IsSelf, got %+v", first)
	}
	if first.Username != "alice" {
		t.Fatalf("viewer profile not resolved: %+v", first)
	}
	if first.Availability != AvailabilityUndecided {
		t.Fatalf("non-voting viewer must read as undecided, got %d", first.Availability)
	}
	if view.MyAvailability != AvailabilityUndecided {
		t.Fatalf("expected MyAvailability 0, got %d", view.MyAvailability)
	}
	if view.Users[1].Availability != AvailabilityPresent || view.Users[2].Availability != AvailabilityAbsent {
		t.Fatalf("voter statuses lost: %+v", view.Users)
	}
	if view.Users[1].IsSelf || view.Users[2].IsSelf {
		t.Fatalf("only the viewer may carry IsSelf")
	}
	if view.CreatedBy != "u1" {
		t.Fatalf("expected CreatedBy u1, got %q", view.CreatedBy)
	}
}

func TestGetScheduleViewListsVotingViewerExactlyOnce(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}}
	store := &availabilityStoreStub{entries: []AvailabilityEntry{
		{User: User{UserID: "u2", Username: "bob"}, Availability: AvailabilityPresent},
		{User: User{UserID: "viewer", Username: "alice"}, Availability: AvailabilityUncertain},
	}}

	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "")

	view, err := svc.GetScheduleView(context.Background(), "schedule-1", "viewer")
	if err != nil {
		t.Fatalf("GetScheduleView returned error: %v", err)
	}

	count := 0
	for _, entry := range view.Users {
		if entry.UserID == "viewer" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("viewer appeared %d times in roster", count)
	}
	if view.Users[0].UserID != "viewer" || view.Users[0].Availability != AvailabilityUncertain {
		t.Fatalf("voting viewer must keep the first slot with their vote: %+v", view.Users[0])
	}
	if view.Users[0].Username != "alice" {
		t.Fatalf("voting viewer profile must come from the joined row: %+v", view.Users[0])
	}
	if view.MyAvailability != AvailabilityUncertain {
		t.Fatalf("expected MyAvailability %d, got %d", AvailabilityUncertain, view.MyAvailability)
	}
}

func TestGetScheduleViewToleratesMissingViewerProfile(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}}
	svc := newTestScheduleService(repo, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	view, err := svc.GetScheduleView(context.Background(), "schedule-1", "ghost")
	if err != nil {
		t.Fatalf("GetScheduleView returned error: %v", err)
	}
	if len(view.Users) != 1 || view.Users[0].UserID != "ghost" || view.Users[0].Username != "" {
		t.Fatalf("expected bare viewer entry, got %+v", view.Users)
	}
}

func TestGetScheduleViewMissingScheduleIsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleRepoStub{}, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	if _, err := svc.GetScheduleView(context.Background(), "missing", "viewer"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteScheduleRemovesChildrenBeforeParent(t *testing.T) {
	t.Parallel()

	var calls []string
	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}, calls: &calls}
	store := &availabilityStoreStub{calls: &calls}

	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "")

	if err := svc.DeleteSchedule(context.Background(), "u1", "schedule-1"); err != nil {
		t.Fatalf("DeleteSchedule returned error: %v", err)
	}

	if len(calls) != 2 || calls[0] != "delete availabilities" || calls[1] != "delete schedule" {
		t.Fatalf("unexpected delete order: %v", calls)
	}
}

func TestDeleteScheduleKeepsParentWhenChildDeleteFails(t *testing.T) {
	t.Parallel()

	var calls []string
	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}, calls: &calls}
	store := &availabilityStoreStub{calls: &calls, deleteErr: errors.New("disk full")}

	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "")

	err := svc.DeleteSchedule(context.Background(), "u1", "schedule-1")
	if err == nil {
		t.Fatal("expected error when availability delete fails")
	}
	for _, call := range calls {
		if call == "delete schedule" {
			t.Fatal("schedule delete must not run after a failed child delete")
		}
	}
}

func TestDeleteScheduleToleratesConcurrentDeletion(t *testing.T) {
	t.Parallel()

	repo := &scheduleRepoStub{
		schedule:  Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"},
		deleteErr: persistence.ErrNotFound,
	}
	store := &availabilityStoreStub{deleteErr: persistence.ErrNotFound}

	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "")

	if err := svc.DeleteSchedule(context.Background(), "u1", "schedule-1"); err != nil {
		t.Fatalf("expected concurrent deletion to be a no-op, got %v", err)
	}
}

func TestDeleteScheduleHidesUnauthorizedAndMissingAlike(t *testing.T) {
	t.Parallel()

	var calls []string
	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}, calls: &calls}
	store := &availabilityStoreStub{calls: &calls}
	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "admin")

	if err := svc.DeleteSchedule(context.Background(), "u2", "schedule-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign schedule: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteSchedule(context.Background(), "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing schedule: expected ErrNotFound, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("no deletes may run for rejected requests: %v", calls)
	}
}

func TestDeleteScheduleAllowsAdministrator(t *testing.T) {
	t.Parallel()

	var calls []string
	repo := &scheduleRepoStub{schedule: Schedule{ScheduleID: "schedule-1", CreatedBy: "u1"}, calls: &calls}
	store := &availabilityStoreStub{calls: &calls}
	svc := newTestScheduleService(repo, store, &userDirectoryStub{}, "admin")

	if err := svc.DeleteSchedule(context.Background(), "admin", "schedule-1"); err != nil {
		t.Fatalf("DeleteSchedule by admin returned error: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected both delete steps, got %v", calls)
	}
}

func TestListOwnedSchedulesRequiresActor(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleRepoStub{}, &availabilityStoreStub{}, &userDirectoryStub{}, "")

	if _, err := svc.ListOwnedSchedules(context.Background(), ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
