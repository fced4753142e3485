package selector

// Error context strings for wrapped errors
const (
	ErrContextFailedToBeginTx       = "failed to begin redeem transaction"
	ErrContextFailedToCommitTx      = "failed to commit redeem transaction"
	ErrContextFailedToListSelectors = "failed to list selectors"
	ErrContextFailedToListOwned     = "failed to list owned characters"
	ErrContextFailedToGetSelector   = "failed to get selector"
	ErrContextFailedToDelete        = "failed to delete selector"
	ErrContextFailedToGrant         = "failed to grant character"
)

// Log message constants
const (
	LogMsgRedeemCalled         = "Redeem called"
	LogMsgRedeemCompleted      = "Redeem completed"
	LogMsgListCalled           = "ListSelectors called"
	LogMsgListEligibleCalled   = "ListEligible called"
	LogMsgFailedToPublishEvent = "Failed to publish event"
	LogMsgShuttingDownService  = "Shutting down selector service"
	LogMsgServiceShutdownDone  = "Selector service shutdown complete"
	LogMsgServiceShutdownForce = "Selector service shutdown forced, async publishes abandoned"
)

// Redemption message formats
const (
	MsgFormatNewCharacter  = "%s joined your collection"
	MsgFormatConstellation = "%s rose to constellation %d"
)
