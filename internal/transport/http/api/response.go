package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"teaps/internal/domain/fault"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError maps domain errors onto HTTP statuses. Anything unrecognized is
// reported as a 500 with a generic message so internals never leak.
func FailError(w http.ResponseWriter, err error, fallbackCode, fallbackMessage, requestID string) {
	var validationErr *fault.ValidationError
	if errors.As(err, &validationErr) {
		FailWithDetails(w, http.StatusBadRequest, "validation_error", validationErr.Reason,
			map[string]any{"field": validationErr.Field}, requestID)
		return
	}

	var notFoundErr *fault.NotFoundError
	if errors.As(err, &notFoundErr) {
		Fail(w, http.StatusNotFound, "not_found", notFoundErr.Error(), requestID)
		return
	}

	var conflictErr *fault.StateConflictError
	if errors.As(err, &conflictErr) {
		Fail(w, http.StatusConflict, "state_conflict", conflictErr.Error(), requestID)
		return
	}

	slog.Error("request failed", "err", err, "requestId", requestID)
	Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
}
