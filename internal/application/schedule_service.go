package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akapochi/event-management/internal/persistence"
)

// UnnamedScheduleName is stored when the submitted name is empty or blank.
const UnnamedScheduleName = "（名称未設定）"

// maxScheduleNameLength bounds the stored schedule name. Longer names are
// silently truncated, never rejected.
const maxScheduleNameLength = 255

// ScheduleRepository captures the persistence interactions needed by the service.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedulesByOwner(ctx context.Context, ownerID string) ([]Schedule, error)
}

// AvailabilityStore exposes the vote operations the aggregate needs: reading
// the joined rows for view assembly and the bulk child delete.
type AvailabilityStore interface {
	ListAvailabilitiesForSchedule(ctx context.Context, scheduleID string) ([]AvailabilityEntry, error)
	DeleteAvailabilitiesForSchedule(ctx context.Context, scheduleID string) error
}

// UserDirectory exposes user profile lookup.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// ScheduleService orchestrates the schedule aggregate: creation, authorized
// mutation, view assembly, and cascading deletion of availability rows.
type ScheduleService struct {
	schedules      ScheduleRepository
	availabilities AvailabilityStore
	users          UserDirectory
	policy         OwnershipPolicy
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewScheduleService wires dependencies for schedule aggregate operations.
func NewScheduleService(schedules ScheduleRepository, availabilities AvailabilityStore, users UserDirectory, policy OwnershipPolicy, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, availabilities, users, policy, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified logger.
func NewScheduleServiceWithLogger(schedules ScheduleRepository, availabilities AvailabilityStore, users UserDirectory, policy OwnershipPolicy, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:      schedules,
		availabilities: availabilities,
		users:          users,
		policy:         policy,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// CreateSchedule persists a new schedule owned by the acting user. No
// availability rows are created at this point; votes appear lazily.
func (s *ScheduleService) CreateSchedule(ctx context.Context, actorID string, input ScheduleInput) (Schedule, error) {
	if s == nil {
		return Schedule{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule repository not configured")
	}
	if actorID == "" {
		return Schedule{}, ErrForbidden
	}

	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		return Schedule{}, vErr
	}

	schedule := Schedule{
		ScheduleID:   s.idGenerator(),
		ScheduleName: normalizeScheduleName(input.ScheduleName),
		Memo:         input.Memo,
		CreatedBy:    actorID,
		UpdatedAt:    s.now(),
		Day:          input.Day,
		Style:        input.Style,
		Term:         input.Term,
	}

	persisted, err := s.schedules.CreateSchedule(ctx, schedule)
	if err != nil {
		return Schedule{}, mapRepoError(err)
	}

	s.loggerWith(ctx, "CreateSchedule", "schedule_id", persisted.ScheduleID, "created_by", actorID).
		InfoContext(ctx, "schedule created")

	return persisted, nil
}

// GetScheduleView assembles the presentation model for one schedule: the
// schedule, the roster of viewer plus voters, and each user's effective
// availability. Assembly never writes to the stores; the default status for
// non-voters exists only in the returned value.
func (s *ScheduleService) GetScheduleView(ctx context.Context, scheduleID, viewerID string) (ScheduleView, error) {
	if s == nil {
		return ScheduleView{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil || s.availabilities == nil {
		return ScheduleView{}, fmt.Errorf("repositories not configured")
	}

	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return ScheduleView{}, mapRepoError(err)
	}

	entries, err := s.availabilities.ListAvailabilitiesForSchedule(ctx, scheduleID)
	if err != nil {
		return ScheduleView{}, mapRepoError(err)
	}

	statusByUser := make(map[string]int, len(entries))
	for _, entry := range entries {
		statusByUser[entry.User.UserID] = entry.Availability
	}

	// The viewer opens the roster even when they have never voted. Voters
	// follow in username order; a viewer who voted keeps the first slot.
	roster := make([]RosterEntry, 0, len(entries)+1)
	indexByUser := make(map[string]int, len(entries)+1)

	viewerEntry := RosterEntry{UserID: viewerID, IsSelf: true}
	if s.users != nil {
		viewer, err := s.users.GetUser(ctx, viewerID)
		switch {
		case err == nil:
			viewerEntry.Username = viewer.Username
			viewerEntry.MailAddress = viewer.MailAddress
		case isNotFoundError(err):
			// Session outlived the profile row; show the bare id.
		default:
			return ScheduleView{}, err
		}
	}
	indexByUser[viewerID] = len(roster)
	roster = append(roster, viewerEntry)

	for _, entry := range entries {
		if idx, ok := indexByUser[entry.User.UserID]; ok {
			roster[idx].Username = entry.User.Username
			roster[idx].MailAddress = entry.User.MailAddress
			continue
		}
		indexByUser[entry.User.UserID] = len(roster)
		roster = append(roster, RosterEntry{
			UserID:      entry.User.UserID,
			Username:    entry.User.Username,
			MailAddress: entry.User.MailAddress,
			IsSelf:      entry.User.UserID == viewerID,
		})
	}

	for i := range roster {
		roster[i].Availability = statusByUser[roster[i].UserID]
	}

	return ScheduleView{
		Schedule:       schedule,
		Users:          roster,
		MyAvailability: statusByUser[viewerID],
		CreatedBy:      schedule.CreatedBy,
	}, nil
}

// GetScheduleForEdit loads a schedule for the edit form. Missing schedules
// and schedules the actor may not mutate produce the same ErrNotFound.
func (s *ScheduleService) GetScheduleForEdit(ctx context.Context, actorID, scheduleID string) (Schedule, error) {
	if s == nil {
		return Schedule{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule repository not configured")
	}

	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		if isNotFoundError(err) {
			return Schedule{}, ErrNotFound
		}
		return Schedule{}, err
	}

	if !s.policy.CanMutate(actorID, schedule) {
		return Schedule{}, ErrNotFound
	}

	return schedule, nil
}

// UpdateSchedule overwrites the mutable fields of a schedule the actor owns
// (or administers). ScheduleID and CreatedBy are carried from the stored row
// regardless of input; the name rules match creation.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, actorID, scheduleID string, input ScheduleInput) (Schedule, error) {
	if s == nil {
		return Schedule{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule repository not configured")
	}

	existing, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		if isNotFoundError(err) {
			return Schedule{}, ErrNotFound
		}
		return Schedule{}, err
	}

	if !s.policy.CanMutate(actorID, existing) {
		return Schedule{}, ErrNotFound
	}

	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		return Schedule{}, vErr
	}

	updated := existing
	updated.ScheduleName = normalizeScheduleName(input.ScheduleName)
	updated.Memo = input.Memo
	updated.Day = input.Day
	updated.Style = input.Style
	updated.Term = input.Term
	updated.UpdatedAt = s.now()

	persisted, err := s.schedules.UpdateSchedule(ctx, updated)
	if err != nil {
		return Schedule{}, mapRepoError(err)
	}

	s.loggerWith(ctx, "UpdateSchedule", "schedule_id", scheduleID, "actor_id", actorID).
		InfoContext(ctx, "schedule updated")

	return persisted, nil
}

// DeleteSchedule removes a schedule aggregate: every availability row first,
// then the schedule itself. When the child delete fails the parent row is
// left in place so no availability rows can outlive their schedule. A
// schedule that disappears between steps is treated as already deleted.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, actorID, scheduleID string) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil || s.availabilities == nil {
		return fmt.Errorf("repositories not configured")
	}

	existing, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		if isNotFoundError(err) {
			return ErrNotFound
		}
		return err
	}

	if !s.policy.CanMutate(actorID, existing) {
		return ErrNotFound
	}

	if err := s.availabilities.DeleteAvailabilitiesForSchedule(ctx, scheduleID); err != nil {
		if !isNotFoundError(err) {
			return fmt.Errorf("failed to delete availabilities for schedule %s: %w", scheduleID, err)
		}
	}

	if err := s.schedules.DeleteSchedule(ctx, scheduleID); err != nil {
		if !isNotFoundError(err) {
			return mapRepoError(err)
		}
	}

	s.loggerWith(ctx, "DeleteSchedule", "schedule_id", scheduleID, "actor_id", actorID).
		InfoContext(ctx, "schedule aggregate deleted")

	return nil
}

// ListOwnedSchedules returns the actor's schedules, most recently updated first.
func (s *ScheduleService) ListOwnedSchedules(ctx context.Context, actorID string) ([]Schedule, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}
	if actorID == "" {
		return nil, ErrForbidden
	}

	schedules, err := s.schedules.ListSchedulesByOwner(ctx, actorID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	return schedules, nil
}

// normalizeScheduleName applies the storage rules for schedule names:
// truncate to the maximum length, then substitute the placeholder when the
// remainder is blank.
func normalizeScheduleName(name string) string {
	runes := []rune(name)
	if len(runes) > maxScheduleNameLength {
		name = string(runes[:maxScheduleNameLength])
	}
	if strings.TrimSpace(name) == "" {
		return UnnamedScheduleName
	}
	return name
}

// validateScheduleInput checks the optional schedule attributes. Day holds a
// day of month, so it is bounded to 0..31; 0 stands for "not set yet" in
// existing data and stays accepted.
func validateScheduleInput(input ScheduleInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Style != nil && *input.Style != "" {
		switch *input.Style {
		case ScheduleStyleRealtime, ScheduleStyleOnDemand:
		default:
			vErr.add("style", "style must be one of the known values")
		}
	}

	if input.Day != nil && (*input.Day < 0 || *input.Day > 31) {
		vErr.add("day", "day must be between 0 and 31")
	}

	return vErr
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
