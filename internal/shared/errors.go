package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a request without a session principal.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the principal's role does not permit the action.
	ErrForbidden = errors.New("forbidden")
	// ErrProtectedAccount guards admin and bootstrap accounts against deletion and
	// deactivation, and against edits by non-admins.
	ErrProtectedAccount = fmt.Errorf("%w: protected account", ErrForbidden)
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation or a repeated state transition.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable indicates the database cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAggregation indicates one of the dashboard counts failed.
	ErrAggregation = errors.New("aggregation failed")
)

// ValidationError carries field level messages. It matches ErrValidation.
type ValidationError struct {
	FieldErrors map[string]string
}

// NewValidationError starts an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{FieldErrors: make(map[string]string)}
}

// Add records a field message.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Err returns v when it holds errors and nil otherwise.
func (v *ValidationError) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a single-message validation error.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflict builds a conflict error with a client-facing detail.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// PublicMessage extracts the detail that follows kind in err's text, so that
// wrapping context added by services is not shown to clients.
func PublicMessage(err, kind error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := err.Error()
	marker := kind.Error() + ": "
	idx := strings.LastIndex(msg, marker)
	if idx < 0 {
		return fallback
	}
	detail := strings.TrimSpace(msg[idx+len(marker):])
	if detail == "" {
		return fallback
	}
	return detail
}
