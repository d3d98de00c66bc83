package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain and gateway errors to HTTP status codes.
func statusFor(err error) int {
	var ge *gateway.Error
	switch {
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrZeroDate), errors.Is(err, core.ErrDateRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.As(err, &ge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeErrorFor writes err with the status statusFor picks. Internal errors
// are not echoed to the client.
func writeErrorFor(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
		slog.ErrorContext(r.Context(), "Unhandled request error", "error", err, "path", r.URL.Path)
	}
	writeError(w, status, msg)
}
