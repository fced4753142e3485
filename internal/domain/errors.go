package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Banner errors
	ErrMsgBannerNotFound = "banner not found"
	ErrMsgBannerInactive = "banner is not active"

	// Character errors
	ErrMsgCharacterNotFound = "character not found"
	ErrMsgRarityMismatch    = "character rarity does not match selector"

	// Fate point errors
	ErrMsgInsufficientPoints = "insufficient fate points"
	ErrMsgExchangeNotFound   = "exchange option not found"

	// Billing errors
	ErrMsgInsufficientFunds = "insufficient funds"

	// Milestone errors
	ErrMsgAlreadyClaimed  = "milestone already claimed"
	ErrMsgNotReached      = "milestone not reached"
	ErrMsgNoSuchMilestone = "no such milestone threshold"

	// Selector errors
	ErrMsgSelectorNotFound = "selector not found"

	// Concurrency errors
	ErrMsgConcurrencyConflict = "concurrent modification conflict"

	// Database/System errors
	ErrMsgConnectionTimeout = "connection timeout"
	ErrMsgDatabaseError     = "database error"
	ErrMsgTxClosed          = "tx is closed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// Banner errors
	ErrBannerNotFound = errors.New(ErrMsgBannerNotFound)
	ErrBannerInactive = errors.New(ErrMsgBannerInactive)

	// Character errors
	ErrCharacterNotFound = errors.New(ErrMsgCharacterNotFound)
	ErrRarityMismatch    = errors.New(ErrMsgRarityMismatch)

	// Fate point errors
	ErrInsufficientPoints = errors.New(ErrMsgInsufficientPoints)
	ErrExchangeNotFound   = errors.New(ErrMsgExchangeNotFound)

	// Billing errors (delegated from the billing collaborator)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)

	// Milestone errors
	ErrAlreadyClaimed  = errors.New(ErrMsgAlreadyClaimed)
	ErrNotReached      = errors.New(ErrMsgNotReached)
	ErrNoSuchMilestone = errors.New(ErrMsgNoSuchMilestone)

	// Selector errors
	ErrSelectorNotFound = errors.New(ErrMsgSelectorNotFound)

	// Concurrency errors
	// The only retryable error in the taxonomy; the roll path retries a
	// bounded number of times before surfacing it.
	ErrConcurrencyConflict = errors.New(ErrMsgConcurrencyConflict)

	// Database/System errors
	ErrConnectionTimeout = errors.New(ErrMsgConnectionTimeout)
	ErrDatabaseError     = errors.New(ErrMsgDatabaseError)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
