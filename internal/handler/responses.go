package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lunarforge/gachad/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, log and bail
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	// Roll messages
	ErrMsgBannerNotFoundError   = "Banner not found"
	ErrMsgBannerInactiveError   = "Banner is not currently active"
	ErrMsgNotEnoughTicketsError = "Not enough roll tickets"
	ErrMsgRollConflictError     = "Your rolls are coming in too fast. Please try again."

	// Fate point messages
	ErrMsgNotEnoughPointsError  = "Not enough fate points"
	ErrMsgExchangeNotFoundError = "Exchange option not found"

	// Milestone messages
	ErrMsgAlreadyClaimedError  = "Milestone already claimed"
	ErrMsgNotReachedError      = "Milestone not reached yet"
	ErrMsgNoSuchMilestoneError = "Milestone not found"

	// Selector messages
	ErrMsgSelectorNotFoundError  = "Selector not found"
	ErrMsgCharacterNotFoundError = "Character not found"
	ErrMsgRarityMismatchError    = "Selector rarity does not match that character"

	// User messages
	ErrMsgUserNotFoundError = "User not found"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrBannerNotFound):
		return http.StatusNotFound, ErrMsgBannerNotFoundError
	case errors.Is(err, domain.ErrBannerInactive):
		return http.StatusConflict, ErrMsgBannerInactiveError
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, ErrMsgNotEnoughTicketsError
	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusBadRequest, ErrMsgNotEnoughPointsError
	case errors.Is(err, domain.ErrExchangeNotFound):
		return http.StatusNotFound, ErrMsgExchangeNotFoundError
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return http.StatusConflict, ErrMsgAlreadyClaimedError
	case errors.Is(err, domain.ErrNotReached):
		return http.StatusConflict, ErrMsgNotReachedError
	case errors.Is(err, domain.ErrNoSuchMilestone):
		return http.StatusNotFound, ErrMsgNoSuchMilestoneError
	case errors.Is(err, domain.ErrSelectorNotFound):
		return http.StatusNotFound, ErrMsgSelectorNotFoundError
	case errors.Is(err, domain.ErrCharacterNotFound):
		return http.StatusNotFound, ErrMsgCharacterNotFoundError
	case errors.Is(err, domain.ErrRarityMismatch):
		return http.StatusConflict, ErrMsgRarityMismatchError
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, ErrMsgRollConflictError
	case errors.Is(err, domain.ErrDatabaseError):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrConnectionTimeout):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	// Wrapped errors with a domain base resolve through Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != nil && unwrapped != err {
		return mapServiceErrorToUserMessage(unwrapped)
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
