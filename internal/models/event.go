package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LotteryStatus represents the lifecycle state of an event's donor lottery.
// An event without a status has no lottery initialized yet.
type LotteryStatus string

const (
	LotteryStatusActive LotteryStatus = "active"
	LotteryStatusEnded  LotteryStatus = "ended"
)

// DefaultLotteryDurationHours is applied when an event is created without
// an explicit lottery duration (72 hours = 3 days).
const DefaultLotteryDurationHours = 72

// DisasterEvent represents a single relief campaign record. The lottery
// fields are absent until the first scheduler or timer pass initializes
// them, and become terminal once the status reaches "ended".
type DisasterEvent struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title                   string             `bson:"title" json:"title"`
	Description             string             `bson:"description,omitempty" json:"description,omitempty"`
	DisasterLocation        string             `bson:"disaster_location,omitempty" json:"disasterLocation,omitempty"`
	EstimatedAmountRequired float64            `bson:"estimated_amount_required,omitempty" json:"estimatedAmountRequired,omitempty"`
	Source                  string             `bson:"source,omitempty" json:"source,omitempty"`

	// DisasterHash correlates this record with the on-chain disaster entry.
	// An event without a hash never participates in the lottery.
	DisasterHash string `bson:"disaster_hash,omitempty" json:"disasterHash,omitempty"`

	LotteryStatus           LotteryStatus `bson:"lottery_status,omitempty" json:"lotteryStatus,omitempty"`
	LotteryDurationHours    int           `bson:"lottery_duration_hours,omitempty" json:"lotteryDurationHours,omitempty"`
	LotteryEndTime          time.Time     `bson:"lottery_end_time,omitempty" json:"lotteryEndTime,omitempty"`
	LotteryWinner           string        `bson:"lottery_winner,omitempty" json:"lotteryWinner,omitempty"`
	LotteryParticipantCount int64         `bson:"lottery_participant_count,omitempty" json:"lotteryParticipantCount,omitempty"`
	LotteryPrizeAmount      float64       `bson:"lottery_prize_amount,omitempty" json:"lotteryPrizeAmount,omitempty"`
	LotteryTransactionHash  string        `bson:"lottery_transaction_hash,omitempty" json:"lotteryTransactionHash,omitempty"`
	LotteryGasUsed          string        `bson:"lottery_gas_used,omitempty" json:"lotteryGasUsed,omitempty"`
	LotteryError            string        `bson:"lottery_error,omitempty" json:"lotteryError,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// LotteryEligible reports whether this event can ever be scheduled.
func (e *DisasterEvent) LotteryEligible() bool {
	return e.DisasterHash != ""
}

// LotteryDuration returns the configured duration, falling back to the
// default when the intake flow left it unset.
func (e *DisasterEvent) LotteryDuration() time.Duration {
	hours := e.LotteryDurationHours
	if hours <= 0 {
		hours = DefaultLotteryDurationHours
	}
	return time.Duration(hours) * time.Hour
}
