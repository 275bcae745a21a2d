package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps service sentinel errors onto HTTP status codes.
// Unrecognised errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, models.ErrNoQuote):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_quote")
	case errors.Is(err, models.ErrAlreadyExists):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "already_exists")
	case errors.Is(err, models.ErrInvalidTransaction),
		errors.Is(err, models.ErrInvalidPortfolio),
		errors.Is(err, models.ErrInvalidPrice):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_request")
	case errors.Is(err, models.ErrUnsupportedFormat):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "unsupported_format")
	default:
		logger.Error().Err(err).Msg("Unhandled service error")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
