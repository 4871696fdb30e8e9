package repositories

import (
	"context"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventRepository defines the interface for disaster event data operations.
//
// The lottery transitions are deliberately conditional updates rather than
// whole-record overwrites: InitializeLottery and ClaimLotteryExecution only
// succeed when the record is still in the expected state, so two racing
// schedulers (or a scheduler and an in-process timer) cannot both win the
// same transition.
type EventRepository interface {
	Create(ctx context.Context, event *models.DisasterEvent) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DisasterEvent, error)
	FindAll(ctx context.Context) ([]*models.DisasterEvent, error)
	FindByLotteryStatus(ctx context.Context, status models.LotteryStatus) ([]*models.DisasterEvent, error)
	// FindUninitialized returns lottery-eligible events whose lottery has
	// never been set up. Events without a disaster hash are excluded.
	FindUninitialized(ctx context.Context) ([]*models.DisasterEvent, error)
	Update(ctx context.Context, event *models.DisasterEvent) error

	// InitializeLottery sets lottery_status=active, the end time and the
	// duration, but only if the event has no lottery status yet. It reports
	// whether this caller performed the initialization.
	InitializeLottery(ctx context.Context, id primitive.ObjectID, endTime time.Time, durationHours int) (bool, error)

	// ClaimLotteryExecution transitions lottery_status from active to ended.
	// It reports whether this caller won the transition; the on-chain call
	// must only be made after winning it.
	ClaimLotteryExecution(ctx context.Context, id primitive.ObjectID) (bool, error)

	// RecordLotteryOutcome writes the winner fields (or the error
	// annotation) after an execution attempt.
	RecordLotteryOutcome(ctx context.Context, id primitive.ObjectID, outcome *models.LotteryOutcome) error
}

// AdminUserRepository defines the interface for operator account operations.
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
