package application

// OwnershipPolicy decides whether a user may mutate a schedule. The same
// predicate gates the edit form, the update endpoint, and the delete
// endpoint; callers must not re-derive the condition.
type OwnershipPolicy struct {
	// AdminUserID is the one fixed identity allowed to mutate any schedule.
	AdminUserID string
}

// CanMutate reports whether actingUserID may edit or delete the schedule.
// A zero-value schedule (not loaded) is never mutable, so absence and lack
// of authorization look identical to callers.
func (p OwnershipPolicy) CanMutate(actingUserID string, schedule Schedule) bool {
	if schedule.ScheduleID == "" || actingUserID == "" {
		return false
	}
	if schedule.CreatedBy == actingUserID {
		return true
	}
	return p.AdminUserID != "" && actingUserID == p.AdminUserID
}
