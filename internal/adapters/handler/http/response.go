package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps core errors to status codes. Anything unknown is
// logged and reported as an internal error without leaking details.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrPollNotFound):
		writeError(w, http.StatusNotFound, "not_found", domain.ErrPollNotFound.Error())
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusGone, "expired", domain.ErrExpired.Error())
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", domain.ErrAlreadyVoted.Error())
	case errors.Is(err, domain.ErrInvalidOption), errors.Is(err, domain.ErrOptionNotFound):
		writeError(w, http.StatusBadRequest, "invalid_option", domain.ErrInvalidOption.Error())
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
