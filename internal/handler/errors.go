package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Header / query parameter error messages
	ErrMsgMissingUserID     = "Missing user identity"
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidSelectorID = "Invalid selector id"
)
