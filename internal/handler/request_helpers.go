package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lunarforge/gachad/internal/logger"
)

// HeaderUserID carries the caller identity resolved by the auth layer.
// HeaderIdempotencyKey lets clients replay an aborted roll safely.
const (
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// DecodeAndValidateRequest decodes a JSON request body, validates it, and
// returns appropriate errors. If it returns an error the HTTP response has
// already been written and the handler should return.
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		http.Error(w, ErrMsgInvalidRequest, http.StatusBadRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		validationErrs := FormatValidationError(err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: validationErrs,
		})
		return err
	}

	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// GetUserID extracts the authenticated user id the auth layer put on the
// request. If it is missing the response has already been written.
func GetUserID(r *http.Request, w http.ResponseWriter) (string, bool) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		logger.FromContext(r.Context()).Warn("Missing user id header")
		http.Error(w, ErrMsgMissingUserID, http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// GetQueryParam retrieves and validates a required query parameter.
// If ok is false the HTTP response has already been written.
func GetQueryParam(r *http.Request, w http.ResponseWriter, paramName string) (string, bool) {
	log := logger.FromContext(r.Context())
	value := r.URL.Query().Get(paramName)
	if value == "" {
		log.Warn(fmt.Sprintf("Missing %s query parameter", paramName))
		http.Error(w, fmt.Sprintf(ErrMsgMissingQueryParam, paramName), http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// GetOptionalQueryParam retrieves an optional query parameter, falling back
// to defaultValue when absent.
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}
