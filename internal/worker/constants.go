package worker

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// Log messages for the weekly reset worker
const (
	LogMsgWeeklyResetStarting  = "Starting weekly fate point reset"
	LogMsgWeeklyResetCompleted = "Weekly fate point reset completed"
	LogMsgWeeklyResetFailed    = "Weekly fate point reset failed"
	LogMsgWeeklyResetScheduled = "Next weekly reset scheduled"
)

// Log messages for the stale week sweep job
const (
	LogMsgSweepCompleted = "Stale week sweep completed"
	LogMsgSweepFailed    = "Stale week sweep failed"
)
