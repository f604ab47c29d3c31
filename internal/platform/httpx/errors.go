package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/officehub/officehub/internal/shared"
)

// Responder maps domain errors to envelopes. Debug adds the raw error text,
// which is otherwise never sent to clients.
type Responder struct {
	Logger *slog.Logger
	Debug  bool
}

// Error writes the envelope for err using the shared error taxonomy.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := Classify(err)
	env := Envelope{Success: false, Message: message}

	var verr *shared.ValidationError
	if errors.As(err, &verr) && verr.HasErrors() {
		env.Errors = verr.FieldErrors
	}
	if status >= http.StatusInternalServerError {
		logger := rs.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed", slog.String("path", r.URL.Path), slog.Int("status", status), slog.Any("error", err))
	}
	if rs.Debug {
		env.Debug = err.Error()
	}
	JSON(w, status, env)
}

// RespondError writes err without debug output.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	Responder{}.Error(w, r, err)
}

// Classify returns the status code and client-safe message for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrAggregation):
		return http.StatusInternalServerError, "Failed to compute dashboard summary"
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, shared.ErrProtectedAccount):
		return http.StatusForbidden, "This account is protected and cannot be deleted"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action"
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, conflictMessage(err)
	case errors.Is(err, shared.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Database is unavailable, try again later"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func validationMessage(err error) string {
	return shared.PublicMessage(err, shared.ErrValidation, "Validation failed")
}

func conflictMessage(err error) string {
	return shared.PublicMessage(err, shared.ErrConflict, "Resource already exists")
}
