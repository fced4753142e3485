package milestone

// Error context strings for wrapped errors
const (
	ErrContextFailedToReadConfig  = "failed to read milestone config"
	ErrContextFailedToParseConfig = "failed to parse milestone config"
	ErrContextFailedToBeginTx     = "failed to begin claim transaction"
	ErrContextFailedToCommitTx    = "failed to commit claim transaction"
	ErrContextFailedToGetPulls    = "failed to get total pulls"
	ErrContextFailedToGetClaims   = "failed to get claimed thresholds"
	ErrContextFailedToMarkClaimed = "failed to mark milestone claimed"
	ErrContextFailedToGrantReward = "failed to grant milestone reward"
)

// Log message constants
const (
	LogMsgClaimCalled          = "Claim called"
	LogMsgClaimCompleted       = "Claim completed"
	LogMsgGetProgressCalled    = "GetProgress called"
	LogMsgFailedToPublishEvent = "Failed to publish event"
	LogMsgShuttingDownService  = "Shutting down milestone service"
	LogMsgServiceShutdownDone  = "Milestone service shutdown complete"
	LogMsgServiceShutdownForce = "Milestone service shutdown forced, async publishes abandoned"
)
