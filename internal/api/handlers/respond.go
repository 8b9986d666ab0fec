package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// respondServiceError translates the error taxonomy into HTTP statuses.
// Unrecognized errors are reported as 500 without leaking their text.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrStaleState),
		errors.Is(err, domain.ErrDuplicateEntity),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrAlreadyDecided):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
