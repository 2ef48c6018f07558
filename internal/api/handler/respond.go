package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes per
// the error taxonomy: all mapping lives here so handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidRecipient),
		errors.Is(err, domain.ErrInvalidContent):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceError),
		errors.Is(err, domain.ErrRepositoryError),
		errors.Is(err, domain.ErrSerialError):
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
