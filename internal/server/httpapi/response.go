package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/escolar/inventario/internal/errs"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeMessage writes a JSON error body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps sentinel errors to HTTP statuses. Unknown errors are
// reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, errs.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrInUse):
		writeMessage(w, http.StatusConflict, "still in use")
	case errors.Is(err, errs.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, "rate limited")
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errs.ErrValidation
	}
	return nil
}
