package fatepoints

// Error context strings for wrapped errors
const (
	ErrContextFailedToReadOptions  = "failed to read exchange options"
	ErrContextFailedToParseOptions = "failed to parse exchange options"
	ErrContextFailedToBeginTx      = "failed to begin exchange transaction"
	ErrContextFailedToCommitTx     = "failed to commit exchange transaction"
	ErrContextFailedToGetPoints    = "failed to get fate points"
	ErrContextFailedToDebitPoints  = "failed to debit fate points"
	ErrContextFailedToGrant        = "failed to apply exchange grant"
	ErrContextFailedToSweep        = "failed to reset stale weeks"
)

// Log message constants
const (
	LogMsgExchangeCalled       = "Exchange called"
	LogMsgExchangeCompleted    = "Exchange completed"
	LogMsgGetPointsCalled      = "GetFatePoints called"
	LogMsgWeeklySweepStarted   = "Weekly fate point sweep started"
	LogMsgWeeklySweepCompleted = "Weekly fate point sweep completed"
	LogMsgFailedToPublishEvent = "Failed to publish event"
	LogMsgShuttingDownService  = "Shutting down fatepoints service"
	LogMsgServiceShutdownDone  = "Fatepoints service shutdown complete"
	LogMsgServiceShutdownForce = "Fatepoints service shutdown forced, async publishes abandoned"
)

// Exchange message formats, rendered through the locale-aware printer
const (
	MsgFormatRedeemed = "Redeemed %s for %d fate points, %d remaining"
)
