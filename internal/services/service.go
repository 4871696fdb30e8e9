package services

import (
	"context"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/pkg/lotterycontract"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContractGateway is the write path to the on-chain lottery. The production
// implementation is pkg/lotterycontract.EVMGateway.
type ContractGateway interface {
	// ExecuteLottery performs one lottery() call for the disaster hash and
	// returns the interpreted LotteryWinner event.
	ExecuteLottery(ctx context.Context, disasterHash string) (*lotterycontract.Result, error)
}

// LotteryService is the shared execution path used by both the batch
// scheduler and the in-process timer service.
type LotteryService interface {
	// CheckEvent classifies one event and, when its window has expired,
	// claims and executes the lottery. It never returns an error: failures
	// are carried in the result so callers can process other events.
	CheckEvent(ctx context.Context, event *models.DisasterEvent) models.EventCheckResult

	// ExecuteNow is the operator escape hatch: it bypasses the expiry check
	// but still goes through the conditional claim, so an already-ended
	// lottery is never executed twice.
	ExecuteNow(ctx context.Context, eventID primitive.ObjectID) (models.EventCheckResult, error)
}

// SchedulerService runs one batch pass over the event store.
type SchedulerService interface {
	RunScheduledCheck(ctx context.Context) (*models.ScheduleSummary, error)
}

// EventService handles disaster event intake and reads.
type EventService interface {
	CreateEvent(ctx context.Context, event *models.DisasterEvent) (*models.DisasterEvent, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.DisasterEvent, error)
	GetAllEvents(ctx context.Context) ([]*models.DisasterEvent, error)
}

// AuthService authenticates operators for the protected endpoints.
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	CreateAdmin(ctx context.Context, email, password, role string) (*models.AdminUser, error)
}
