package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"giro/internal/core"
	"giro/internal/services"
	"giro/internal/storage"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrSessionOpen),
		errors.Is(err, services.ErrNoOpenSession):
		respondError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidClock,
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrInvalidPayment,
		core.ErrInvalidPercentages,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
