package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/christianmesinas/famplan/internal/service"
	"github.com/christianmesinas/famplan/pkg/logger"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

// respondError writes a JSON error body with the given status
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service-layer error to an HTTP response.
// Unrecognized errors become an opaque 500 and get logged.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrInviteNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrEventNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrNotFamilyMember),
		errors.Is(err, service.ErrNotPostAuthor),
		errors.Is(err, service.ErrCalendarNotConnected):
		respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrEmailConflict),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInviteExpired),
		errors.Is(err, service.ErrInviteAlreadyUsed):
		respondError(w, http.StatusGone, err.Error())

	case errors.Is(err, service.ErrInvalidPost),
		errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrInvalidFamilyName),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrSelfFollow):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrCalendarUnavailable):
		respondError(w, http.StatusBadGateway, err.Error())

	default:
		logger.Error().Err(err).Msg("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
