package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/akapochi/event-management/internal/application"
)

type scheduleService interface {
	CreateSchedule(ctx context.Context, actorID string, input application.ScheduleInput) (application.Schedule, error)
	GetScheduleView(ctx context.Context, scheduleID, viewerID string) (application.ScheduleView, error)
	GetScheduleForEdit(ctx context.Context, actorID, scheduleID string) (application.Schedule, error)
	UpdateSchedule(ctx context.Context, actorID, scheduleID string, input application.ScheduleInput) (application.Schedule, error)
	DeleteSchedule(ctx context.Context, actorID, scheduleID string) error
	ListOwnedSchedules(ctx context.Context, actorID string) ([]application.Schedule, error)
}

// ScheduleHandler serves the schedule aggregate endpoints.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

// List returns the schedules owned by the authenticated user.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedules, err := h.service.ListOwnedSchedules(r.Context(), principal.UserID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{
		Schedules: toScheduleDTOs(schedules),
	})
}

// New returns the metadata the creation form needs. The form itself is
// rendered by the presentation layer.
func (h *ScheduleHandler) New(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newScheduleFormResponse{
		Styles:      []string{application.ScheduleStyleRealtime, application.ScheduleStyleOnDemand},
		DefaultName: application.UnnamedScheduleName,
	})
}

// Create registers a new schedule owned by the authenticated user.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.CreateSchedule(r.Context(), principal.UserID, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Location", "/schedules/"+schedule.ScheduleID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

// Show returns the assembled view for one schedule.
func (h *ScheduleHandler) Show(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	view, err := h.service.GetScheduleView(r.Context(), scheduleID, principal.UserID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleViewResponse(view))
}

// EditForm returns the schedule payload for the edit form. Missing and
// unauthorized schedules produce the same not-found answer.
func (h *ScheduleHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.GetScheduleForEdit(r.Context(), principal.UserID, scheduleID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

// Mutate dispatches a POST on a schedule by its query intent: edit=1 updates
// the schedule, delete=1 deletes the aggregate, anything else is rejected
// after the ownership check so unauthorized callers still see not-found.
func (h *ScheduleHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	switch {
	case query.Get("edit") == "1":
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}

		schedule, err := h.service.UpdateSchedule(r.Context(), principal.UserID, scheduleID, req.toInput())
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		w.Header().Set("Location", "/schedules/"+schedule.ScheduleID)
		h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})

	case query.Get("delete") == "1":
		if err := h.service.DeleteSchedule(r.Context(), principal.UserID, scheduleID); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)

	default:
		// Run the same ownership check before admitting the request was
		// malformed, so probing with bogus intents leaks nothing either.
		if _, err := h.service.GetScheduleForEdit(r.Context(), principal.UserID, scheduleID); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidIntent)
	}
}

type scheduleRequest struct {
	ScheduleName string  `json:"schedule_name"`
	Memo         string  `json:"memo"`
	Day          *int    `json:"day,omitempty"`
	Style        *string `json:"style,omitempty"`
	Term         *string `json:"term,omitempty"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{
		ScheduleName: r.ScheduleName,
		Memo:         r.Memo,
		Day:          r.Day,
		Style:        r.Style,
		Term:         r.Term,
	}
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}

type listSchedulesResponse struct {
	Schedules []scheduleDTO `json:"schedules"`
}

type newScheduleFormResponse struct {
	Styles      []string `json:"styles"`
	DefaultName string   `json:"default_name"`
}

type scheduleDTO struct {
	ScheduleID   string  `json:"schedule_id"`
	ScheduleName string  `json:"schedule_name"`
	Memo         string  `json:"memo"`
	CreatedBy    string  `json:"created_by"`
	UpdatedAt    string  `json:"updated_at"`
	Day          *int    `json:"day,omitempty"`
	Style        *string `json:"style,omitempty"`
	Term         *string `json:"term,omitempty"`
}

func toScheduleDTO(schedule application.Schedule) scheduleDTO {
	return scheduleDTO{
		ScheduleID:   schedule.ScheduleID,
		ScheduleName: schedule.ScheduleName,
		Memo:         schedule.Memo,
		CreatedBy:    schedule.CreatedBy,
		UpdatedAt:    schedule.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Day:          schedule.Day,
		Style:        schedule.Style,
		Term:         schedule.Term,
	}
}

func toScheduleDTOs(schedules []application.Schedule) []scheduleDTO {
	if len(schedules) == 0 {
		return nil
	}
	out := make([]scheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		out = append(out, toScheduleDTO(schedule))
	}
	return out
}

type rosterEntryDTO struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	MailAddress  string `json:"mail_address,omitempty"`
	IsSelf       bool   `json:"is_self"`
	Availability int    `json:"availability"`
}

type scheduleViewResponse struct {
	Schedule       scheduleDTO      `json:"schedule"`
	Users          []rosterEntryDTO `json:"users"`
	MyAvailability int              `json:"my_availability"`
	CreatedBy      string           `json:"created_by"`
}

func toScheduleViewResponse(view application.ScheduleView) scheduleViewResponse {
	users := make([]rosterEntryDTO, 0, len(view.Users))
	for _, entry := range view.Users {
		users = append(users, rosterEntryDTO{
			UserID:       entry.UserID,
			Username:     entry.Username,
			MailAddress:  entry.MailAddress,
			IsSelf:       entry.IsSelf,
			Availability: entry.Availability,
		})
	}

	return scheduleViewResponse{
		Schedule:       toScheduleDTO(view.Schedule),
		Users:          users,
		MyAvailability: view.MyAvailability,
		CreatedBy:      view.CreatedBy,
	}
}
