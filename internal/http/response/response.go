package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorDetails is the body of every non-2xx answer.
type ErrorDetails struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Details    string `json:"details"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "response encode failed", "status", status, "error", err)
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	JSON(w, r, status, ErrorDetails{StatusCode: status, Message: message, Details: details})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created answers 201 with a Location header and the created resource id as body.
func Created(w http.ResponseWriter, r *http.Request, location string, v any) {
	w.Header().Set("Location", location)
	JSON(w, r, http.StatusCreated, v)
}
