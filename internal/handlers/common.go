package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchwave-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status code
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrAlreadyMain),
		errors.Is(err, services.ErrMainPhotoDelete):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrExternalService):
		respondError(w, err.Error(), http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
