package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/akapochi/event-management/internal/application"
)

type availabilityService interface {
	SetAvailability(ctx context.Context, actorID, scheduleID string, availability int) error
}

// AvailabilityHandler records a user's attendance answer for a schedule.
type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

// Set upserts the authenticated user's availability for the schedule in the
// request path. The first answer creates the row, later answers overwrite it.
func (h *AvailabilityHandler) Set(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := handlerLogger(r.Context(), h.logger, "AvailabilityHandler", "Set",
		"schedule_id", scheduleID, "user_id", principal.UserID)

	if err := h.service.SetAvailability(r.Context(), principal.UserID, scheduleID, req.Availability); err != nil {
		logger.ErrorContext(r.Context(), "failed to set availability",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "availability recorded", "availability", req.Availability)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		ScheduleID:   scheduleID,
		UserID:       principal.UserID,
		Availability: req.Availability,
	})
}

type availabilityRequest struct {
	Availability int `json:"availability"`
}

type availabilityResponse struct {
	ScheduleID   string `json:"schedule_id"`
	UserID       string `json:"user_id"`
	Availability int    `json:"availability"`
}
