package application

import (
	"context"
	"fmt"
	"log/slog"
)

// AvailabilityWriter stores individual votes.
type AvailabilityWriter interface {
	UpsertAvailability(ctx context.Context, scheduleID, userID string, availability int) error
}

// ScheduleFinder is the narrow read the availability service needs to check
// that a vote targets an existing schedule.
type ScheduleFinder interface {
	GetSchedule(ctx context.Context, id string) (Schedule, error)
}

// AvailabilityService records per-user votes against a schedule. Rows are
// created lazily on the first vote; users who never vote have no row.
type AvailabilityService struct {
	schedules      ScheduleFinder
	availabilities AvailabilityWriter
	logger         *slog.Logger
}

// NewAvailabilityService wires dependencies for availability operations.
func NewAvailabilityService(schedules ScheduleFinder, availabilities AvailabilityWriter) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(schedules, availabilities, nil)
}

// NewAvailabilityServiceWithLogger constructs an AvailabilityService with a specified logger.
func NewAvailabilityServiceWithLogger(schedules ScheduleFinder, availabilities AvailabilityWriter, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{
		schedules:      schedules,
		availabilities: availabilities,
		logger:         defaultLogger(logger),
	}
}

// SetAvailability upserts the acting user's vote for a schedule. Votes can
// only be recorded for the actor themselves, against an existing schedule,
// with a known status code.
func (s *AvailabilityService) SetAvailability(ctx context.Context, actorID, scheduleID string, availability int) error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}
	if s.schedules == nil || s.availabilities == nil {
		return fmt.Errorf("repositories not configured")
	}
	if actorID == "" {
		return ErrForbidden
	}

	if availability < AvailabilityUndecided || availability > AvailabilityUncertain {
		vErr := &ValidationError{}
		vErr.add("availability", "availability must be between 0 and 3")
		return vErr
	}

	if _, err := s.schedules.GetSchedule(ctx, scheduleID); err != nil {
		if isNotFoundError(err) {
			return ErrNotFound
		}
		return err
	}

	if err := s.availabilities.UpsertAvailability(ctx, scheduleID, actorID, availability); err != nil {
		return mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "AvailabilityService", "SetAvailability",
		"schedule_id", scheduleID, "user_id", actorID, "availability", availability).
		InfoContext(ctx, "availability recorded")

	return nil
}
