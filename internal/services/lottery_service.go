package services

import (
	"context"
	"fmt"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure LotteryServiceImpl implements LotteryService
var _ LotteryService = (*LotteryServiceImpl)(nil)

// LotteryServiceImpl implements the shared lottery check/execute path.
type LotteryServiceImpl struct {
	eventRepo repositories.EventRepository
	gateway   ContractGateway
}

// NewLotteryService creates a new LotteryServiceImpl
func NewLotteryService(eventRepo repositories.EventRepository, gateway ContractGateway) *LotteryServiceImpl {
	return &LotteryServiceImpl{
		eventRepo: eventRepo,
		gateway:   gateway,
	}
}

// CheckEvent classifies a single event and executes its lottery when the
// window has expired. Classification of pending and skipped events performs
// no writes, so re-running a pass before expiry is idempotent.
func (s *LotteryServiceImpl) CheckEvent(ctx context.Context, event *models.DisasterEvent) models.EventCheckResult {
	result := models.EventCheckResult{EventID: event.ID.Hex()}

	if !event.LotteryEligible() {
		result.Status = models.CheckSkipped
		result.Reason = "missing disaster hash"
		return result
	}

	endTime := event.LotteryEndTime

	// Lazily initialize the lottery on first observation. The conditional
	// write means a concurrent initializer loses silently and we carry on
	// with the end time we computed either way (both compute the same one,
	// created_at + duration).
	if event.LotteryStatus == "" {
		endTime = event.CreatedAt.Add(event.LotteryDuration())
		hours := int(event.LotteryDuration() / time.Hour)

		initialized, err := s.eventRepo.InitializeLottery(ctx, event.ID, endTime, hours)
		if err != nil {
			slog.Error("Failed to initialize lottery", "error", err, "eventId", event.ID.Hex())
			result.Status = models.CheckFailed
			result.Error = fmt.Sprintf("failed to initialize lottery: %s", err)
			return result
		}
		if initialized {
			slog.Info("Lottery initialized", "eventId", event.ID.Hex(), "endTime", endTime)
		}
	} else if event.LotteryStatus == models.LotteryStatusEnded {
		result.Status = models.CheckSkipped
		result.Reason = "lottery already ended"
		return result
	}

	if endTime.IsZero() {
		result.Status = models.CheckSkipped
		result.Reason = "missing lottery end time"
		return result
	}

	now := time.Now()
	if now.Before(endTime) {
		result.Status = models.CheckPending
		result.MinutesRemaining = int64(endTime.Sub(now).Round(time.Minute) / time.Minute)
		if result.MinutesRemaining < 1 {
			result.MinutesRemaining = 1
		}
		return result
	}

	slog.Info("Lottery window expired, executing", "eventId", event.ID.Hex(), "title", event.Title)
	return s.claimAndExecute(ctx, event)
}

// ExecuteNow executes the lottery immediately, initializing it first when
// the event was never observed. The expiry check is skipped; the claim is
// not.
func (s *LotteryServiceImpl) ExecuteNow(ctx context.Context, eventID primitive.ObjectID) (models.EventCheckResult, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return models.EventCheckResult{}, fmt.Errorf("event not found: %w", err)
	}

	result := models.EventCheckResult{EventID: event.ID.Hex()}

	if !event.LotteryEligible() {
		result.Status = models.CheckSkipped
		result.Reason = "missing disaster hash"
		return result, nil
	}

	if event.LotteryStatus == "" {
		endTime := event.CreatedAt.Add(event.LotteryDuration())
		hours := int(event.LotteryDuration() / time.Hour)
		if _, err := s.eventRepo.InitializeLottery(ctx, event.ID, endTime, hours); err != nil {
			return result, fmt.Errorf("failed to initialize lottery: %w", err)
		}
	}

	slog.Info("Manually executing lottery", "eventId", event.ID.Hex(), "title", event.Title)
	return s.claimAndExecute(ctx, event), nil
}

// claimAndExecute wins the active -> ended transition before touching the
// chain. Whoever loses the claim reports already_claimed and performs no
// on-chain call, which is what keeps the scheduler and the timer service
// from double-executing the same event.
func (s *LotteryServiceImpl) claimAndExecute(ctx context.Context, event *models.DisasterEvent) models.EventCheckResult {
	result := models.EventCheckResult{EventID: event.ID.Hex()}

	claimed, err := s.eventRepo.ClaimLotteryExecution(ctx, event.ID)
	if err != nil {
		slog.Error("Failed to claim lottery execution", "error", err, "eventId", event.ID.Hex())
		result.Status = models.CheckFailed
		result.Error = fmt.Sprintf("failed to claim execution: %s", err)
		return result
	}
	if !claimed {
		result.Status = models.CheckAlreadyClaimed
		result.Reason = "another scheduler claimed this lottery"
		return result
	}

	res, err := s.gateway.ExecuteLottery(ctx, event.DisasterHash)
	if err != nil {
		slog.Error("Lottery execution failed", "error", err, "eventId", event.ID.Hex())

		outcome := &models.LotteryOutcome{Success: false, Error: err.Error()}
		if recordErr := s.eventRepo.RecordLotteryOutcome(ctx, event.ID, outcome); recordErr != nil {
			slog.Error("Failed to record lottery failure", "error", recordErr, "eventId", event.ID.Hex())
		}

		result.Status = models.CheckFailed
		result.Error = err.Error()
		return result
	}

	outcome := &models.LotteryOutcome{
		Success:          true,
		Winner:           res.Winner,
		ParticipantCount: res.ParticipantCount,
		TransactionHash:  res.TransactionHash,
		GasUsed:          res.GasUsed,
	}
	if err := s.eventRepo.RecordLotteryOutcome(ctx, event.ID, outcome); err != nil {
		// The on-chain call already happened; log the hash so the record
		// can be reconciled by hand.
		slog.Error("CRITICAL: lottery executed on-chain but result write failed",
			"error", err, "eventId", event.ID.Hex(), "txHash", res.TransactionHash, "winner", res.Winner)
		result.Status = models.CheckFailed
		result.Error = fmt.Sprintf("lottery executed (tx %s) but result write failed: %s", res.TransactionHash, err)
		return result
	}

	slog.Info("Lottery executed", "eventId", event.ID.Hex(),
		"winner", res.Winner, "participants", res.ParticipantCount, "txHash", res.TransactionHash)

	result.Status = models.CheckExecuted
	result.Winner = res.Winner
	result.TransactionHash = res.TransactionHash
	return result
}
