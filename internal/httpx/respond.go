// Package httpx holds the shared HTTP plumbing: JSON responses, the error
// envelope, request logging and metrics middleware.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// ErrorBody is the wire shape for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes body with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Error maps an application error onto an HTTP status and the error
// envelope. Dependency and unclassified failures are logged with their
// full cause and surfaced as a generic 500 — internals never leak.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var details string
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		details = appErr.Details
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		JSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Details: details})
	case apperr.KindAuth:
		JSON(w, http.StatusUnauthorized, ErrorBody{Error: "unauthorized"})
	case apperr.KindNotFound:
		JSON(w, http.StatusNotFound, ErrorBody{Error: err.Error()})
	case apperr.KindLimitExceeded, apperr.KindConflict:
		JSON(w, http.StatusConflict, ErrorBody{Error: err.Error()})
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}

// DecodeJSON decodes a request body, translating malformed payloads into
// validation errors so handlers stay a one-liner.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("malformed JSON body").WithDetails(err.Error())
	}
	return nil
}
