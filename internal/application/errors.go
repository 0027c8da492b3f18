package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Unauthorized mutation attempts deliberately collapse into this error so
	// callers cannot probe whether a schedule exists.
	ErrNotFound = errors.New("application: not found")
	// ErrForbidden is returned when the acting user lacks permission for an operation.
	ErrForbidden = errors.New("application: forbidden")
	// ErrBadRequest is returned for malformed mutation requests, such as a
	// schedule POST carrying neither an edit nor a delete intent.
	ErrBadRequest = errors.New("application: bad request")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
