package gacha

// Roll transaction retry policy. Only lock conflicts retry; every other
// error is terminal for the request.
const (
	RollTxMaxAttempts = 3
)

// Pity read cache sizing
const (
	PityCacheSize = 4096
)

// Error context strings for wrapped errors
const (
	ErrContextFailedToReadConfig    = "failed to read gacha config"
	ErrContextFailedToParseConfig   = "failed to parse gacha config"
	ErrContextFailedToBeginTx       = "failed to begin roll transaction"
	ErrContextFailedToCommitTx      = "failed to commit roll transaction"
	ErrContextFailedToGetPity       = "failed to get pity state"
	ErrContextFailedToUpdatePity    = "failed to update pity state"
	ErrContextFailedToGetBanner     = "failed to get banner state"
	ErrContextFailedToUpdateBanner  = "failed to update banner state"
	ErrContextFailedToDebitTickets  = "failed to debit roll tickets"
	ErrContextFailedToCreditPoints  = "failed to credit fate points"
	ErrContextFailedToCountPull     = "failed to increment total pulls"
	ErrContextFailedToPickCharacter = "failed to pick character"
	ErrContextFailedToGrant         = "failed to grant character"
	ErrContextFailedToSaveRoll      = "failed to save roll result"
	ErrContextFailedToCheckReplay   = "failed to check idempotency key"
)

// Log message constants
const (
	LogMsgRollCalled           = "Roll called"
	LogMsgRollCompleted        = "Roll completed"
	LogMsgRollRetried          = "Roll transaction retried after lock conflict"
	LogMsgHardPityForced       = "Hard pity forced result"
	LogMsgIdempotentReplay     = "Roll replayed from idempotency key"
	LogMsgGetPityCalled        = "GetPity called"
	LogMsgShuttingDownService  = "Shutting down gacha service"
	LogMsgServiceShutdownDone  = "Gacha service shutdown complete"
	LogMsgServiceShutdownForce = "Gacha service shutdown forced, async publishes abandoned"
	LogMsgFailedToPublishEvent = "Failed to publish event"
)

// Banner guarantee messages surfaced to clients
const (
	MsgGuaranteedFeatured = "Your next legendary is guaranteed to be the featured character"
	MsgFiftyFifty         = "Your next legendary has a 50/50 chance of being the featured character"
)

// Counter change messages surfaced to clients
const (
	MsgCounterResetFmt     = "%s pity reset to 0"
	MsgCounterIncrementFmt = "%s pity advanced to %d"
)
