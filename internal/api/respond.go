// Package api carries the JSON envelope shared by every endpoint and the
// mapping from domain errors to HTTP status codes.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

// Envelope is the uniform response shape: {success, data?, count?, message?, error?}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, logger *slog.Logger, data any) {
	WriteJSON(w, logger, http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, logger *slog.Logger, data any) {
	WriteJSON(w, logger, http.StatusCreated, Envelope{Success: true, Data: data})
}

// List writes a collection response with the count field the admin frontend
// relies on.
func List[T any](w http.ResponseWriter, logger *slog.Logger, items []T) {
	n := len(items)
	WriteJSON(w, logger, http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func Message(w http.ResponseWriter, logger *slog.Logger, msg string) {
	WriteJSON(w, logger, http.StatusOK, Envelope{Success: true, Message: msg})
}

func ErrorMessage(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	WriteJSON(w, logger, status, Envelope{Success: false, Error: msg})
}

// Fail converts a domain error to its HTTP shape. Unknown errors become a
// generic 500 so backend internals never leak to clients.
func Fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		transition *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validation):
		ErrorMessage(w, logger, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		ErrorMessage(w, logger, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		ErrorMessage(w, logger, http.StatusConflict, conflict.Error())
	case errors.As(err, &transition):
		ErrorMessage(w, logger, http.StatusConflict, transition.Error())
	default:
		logger.Error("request failed", "error", err)
		ErrorMessage(w, logger, http.StatusInternalServerError, "internal server error")
	}
}
