// Package http provides HTTP handlers and middleware for the schedule
// arranger API.
//
// The router exposes the following endpoints:
//   - GET /auth/github, GET /auth/google: start a federated login by
//     redirecting to the provider's authorization page.
//   - GET /auth/github/callback, GET /auth/google/callback: complete the
//     login, upsert the user profile, and set the `session_token` cookie.
//   - GET or POST /logout: revokes the current session and clears the cookie.
//   - GET /schedules: lists the authenticated user's own schedules.
//   - GET /schedules/new: returns the creation-form metadata (style values).
//   - POST /schedules: creates a schedule; responds 201 with a Location
//     header pointing at the detail endpoint.
//   - GET /schedules/{id}: returns the assembled schedule view (schedule,
//     roster with effective availabilities, the viewer's own availability).
//   - GET /schedules/{id}/edit: returns the schedule for the edit form; 404
//     unless the viewer may mutate it.
//   - POST /schedules/{id}?edit=1: updates the schedule.
//   - POST /schedules/{id}?delete=1: deletes the schedule aggregate.
//   - POST /schedules/{id}/availability: records the viewer's availability.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
