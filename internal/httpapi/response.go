// ABOUTME: JSON response helpers and error-to-status mapping.
// ABOUTME: Every error body has the same {error, message, fields} shape.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/harperreed/cortitrack/internal/wellness"
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var errBadJSON = errors.New("request body is not valid JSON")

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps domain errors to HTTP status codes. Unknown errors are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *wellness.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Fields:  verr.FieldErrors,
		})
	case errors.Is(err, errBadJSON),
		errors.Is(err, wellness.ErrEmptyPatch),
		errors.Is(err, wellness.ErrInvalidGaugeSettings):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
	case errors.Is(err, wellness.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "not allowed for this user"})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, storage.ErrDuplicate):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()})
	default:
		logging.FromContext(r.Context(), nil).Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}
