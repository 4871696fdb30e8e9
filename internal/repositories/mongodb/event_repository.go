package mongodb

import (
	"context"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository implements the repositories.EventRepository interface
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *mongo.Database) repositories.EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

// Create creates a new disaster event
func (r *EventRepository) Create(ctx context.Context, event *models.DisasterEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	event.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds an event by ID
func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DisasterEvent, error) {
	var event models.DisasterEvent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindAll finds all events, newest first
func (r *EventRepository) FindAll(ctx context.Context) ([]*models.DisasterEvent, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.DisasterEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.DisasterEvent{}
	}
	return events, nil
}

// FindByLotteryStatus finds events by lottery status
func (r *EventRepository) FindByLotteryStatus(ctx context.Context, status models.LotteryStatus) ([]*models.DisasterEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"lottery_status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.DisasterEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.DisasterEvent{}
	}
	return events, nil
}

// FindUninitialized finds lottery-eligible events whose lottery fields were
// never set. Events without a disaster hash can never be scheduled, so they
// are excluded here rather than re-reported as skipped on every pass.
func (r *EventRepository) FindUninitialized(ctx context.Context) ([]*models.DisasterEvent, error) {
	filter := bson.M{
		"disaster_hash": bson.M{"$exists": true, "$ne": ""},
		"$or": bson.A{
			bson.M{"lottery_status": bson.M{"$exists": false}},
			bson.M{"lottery_status": ""},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.DisasterEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.DisasterEvent{}
	}
	return events, nil
}

// Update overwrites an event record. Intake-only; lottery transitions go
// through the conditional methods below.
func (r *EventRepository) Update(ctx context.Context, event *models.DisasterEvent) error {
	event.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	return err
}

// InitializeLottery sets the lottery fields only if no status exists yet.
func (r *EventRepository) InitializeLottery(ctx context.Context, id primitive.ObjectID, endTime time.Time, durationHours int) (bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"lottery_status": bson.M{"$exists": false}},
			bson.M{"lottery_status": ""},
		},
	}
	update := bson.M{"$set": bson.M{
		"lottery_status":         models.LotteryStatusActive,
		"lottery_end_time":       endTime,
		"lottery_duration_hours": durationHours,
		"updated_at":             time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ClaimLotteryExecution transitions active -> ended, reporting whether this
// caller won the transition.
func (r *EventRepository) ClaimLotteryExecution(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "lottery_status": models.LotteryStatusActive}
	update := bson.M{"$set": bson.M{
		"lottery_status": models.LotteryStatusEnded,
		"updated_at":     time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RecordLotteryOutcome writes the execution result onto the event record.
func (r *EventRepository) RecordLotteryOutcome(ctx context.Context, id primitive.ObjectID, outcome *models.LotteryOutcome) error {
	set := bson.M{
		"lottery_status": models.LotteryStatusEnded,
		"updated_at":     time.Now(),
	}
	if outcome.Success {
		set["lottery_winner"] = outcome.Winner
		set["lottery_participant_count"] = outcome.ParticipantCount
		set["lottery_transaction_hash"] = outcome.TransactionHash
		if outcome.PrizeAmount > 0 {
			set["lottery_prize_amount"] = outcome.PrizeAmount
		}
		if outcome.GasUsed != "" {
			set["lottery_gas_used"] = outcome.GasUsed
		}
	} else {
		set["lottery_error"] = outcome.Error
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
