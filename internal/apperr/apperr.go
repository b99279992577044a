// Package apperr defines the error kinds shared by the services and the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidKeyLength = errors.New("invalid signing key length")
	ErrFormat           = errors.New("format error")
	ErrConflict         = errors.New("conflict")
	ErrStoreFailure     = errors.New("store failure")
)

// Codes attached to errors raised with oops.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidKeyLength = "INVALID_KEY_LENGTH"
	CodeFormat           = "FORMAT_ERROR"
	CodeConflict         = "CONFLICT"
	CodeStoreFailure     = "STORE_FAILURE"
)

// HTTPStatus maps an error to the status code the API answers with.
// Duplicate usernames answer 401, matching the registration contract.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrConflict):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidKeyLength):
		return "invalid_key_length"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	default:
		return "internal"
	}
}
