package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/vista/internal/clients/eodhd"
	"github.com/bobmcallan/vista/internal/clients/finviz"
	"github.com/bobmcallan/vista/internal/clients/yahoo"
	"github.com/bobmcallan/vista/internal/models"
)

// Error codes returned alongside error messages
const (
	CodeInvalidInput  = "invalid_input"
	CodeConfiguration = "configuration"
	CodeUpstreamPage  = "upstream_page_changed"
	CodeUpstream      = "upstream_error"
	CodeTimeout       = "timeout"
	CodeInternal      = "internal_error"
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

// ErrorStatus maps a view error to an HTTP status and error code.
// Bad request parameters are the caller's fault; a news page that no longer
// parses and a failing provider are upstream faults.
func ErrorStatus(err error) (int, string) {
	var (
		invalid  *models.InvalidInputError
		config   *models.ConfigurationError
		dateErr  *models.DateParseError
		yahooErr *yahoo.APIError
		eodhdErr *eodhd.APIError
		newsErr  *finviz.APIError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.As(err, &config):
		return http.StatusBadRequest, CodeConfiguration
	case errors.As(err, &dateErr):
		return http.StatusBadGateway, CodeUpstreamPage
	case errors.As(err, &yahooErr), errors.As(err, &eodhdErr), errors.As(err, &newsErr):
		return http.StatusBadGateway, CodeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// WriteViewError writes err with the status from ErrorStatus.
func WriteViewError(w http.ResponseWriter, err error) {
	status, code := ErrorStatus(err)
	WriteErrorWithCode(w, status, err.Error(), code)
}
