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

// Compile-time check to ensure EventServiceImpl implements EventService
var _ EventService = (*EventServiceImpl)(nil)

// EventServiceImpl handles disaster event intake and reads.
type EventServiceImpl struct {
	eventRepo repositories.EventRepository
}

// NewEventService creates a new EventServiceImpl
func NewEventService(eventRepo repositories.EventRepository) *EventServiceImpl {
	return &EventServiceImpl{eventRepo: eventRepo}
}

// CreateEvent stores a new disaster event. Lottery fields are left unset;
// the first scheduler or timer observation initializes them.
func (s *EventServiceImpl) CreateEvent(ctx context.Context, event *models.DisasterEvent) (*models.DisasterEvent, error) {
	event.CreatedAt = time.Now()
	event.LotteryStatus = ""
	event.LotteryEndTime = time.Time{}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		slog.Error("Failed to create event", "error", err, "title", event.Title)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("Event created", "eventId", event.ID.Hex(), "title", event.Title, "lotteryEligible", event.LotteryEligible())
	return event, nil
}

// GetEventByID retrieves a single event.
func (s *EventServiceImpl) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.DisasterEvent, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetAllEvents retrieves all events, newest first.
func (s *EventServiceImpl) GetAllEvents(ctx context.Context) ([]*models.DisasterEvent, error) {
	events, err := s.eventRepo.FindAll(ctx)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
