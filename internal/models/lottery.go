package models

// CheckStatus classifies the outcome of checking a single event during a
// scheduler pass or timer fire. Failures are carried as values so one
// event's failure never aborts processing of the others.
type CheckStatus string

const (
	CheckSkipped        CheckStatus = "skipped"
	CheckPending        CheckStatus = "pending"
	CheckExecuted       CheckStatus = "executed"
	CheckFailed         CheckStatus = "failed"
	CheckAlreadyClaimed CheckStatus = "already_claimed"
)

// EventCheckResult is the per-event outcome of a lottery check.
type EventCheckResult struct {
	EventID          string      `json:"eventId"`
	Status           CheckStatus `json:"status"`
	Reason           string      `json:"reason,omitempty"`
	MinutesRemaining int64       `json:"minutesRemaining,omitempty"`
	Winner           string      `json:"winner,omitempty"`
	TransactionHash  string      `json:"txHash,omitempty"`
	Error            string      `json:"error,omitempty"`
}

// ScheduleSummary aggregates one scheduler invocation. It is returned to
// the operator endpoint and printed by the batch entrypoint.
type ScheduleSummary struct {
	Message           string             `json:"message"`
	ProcessedEvents   int                `json:"processedEvents"`
	ExecutedLotteries int                `json:"executedLotteries"`
	Errors            int                `json:"errors"`
	Results           []EventCheckResult `json:"results"`
}

// LotteryOutcome is what gets persisted on an event once its lottery
// execution finishes, successfully or not.
type LotteryOutcome struct {
	Success          bool
	Winner           string
	ParticipantCount int64
	PrizeAmount      float64
	TransactionHash  string
	GasUsed          string
	Error            string
}
