package services

import (
	"context"
	"sync"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// fireTimeout bounds one timer-fired execution end to end, so a hung store
// or RPC call cannot leave the fire goroutine running forever.
const fireTimeout = 5 * time.Minute

// eventTimer is one armed countdown for an active lottery.
type eventTimer struct {
	eventID primitive.ObjectID
	endTime time.Time
	timer   *time.Timer
}

// LotteryTimerService keeps one in-process timer per event with an active
// lottery and fires the shared execution path when a timer elapses. Timer
// state is never persisted: on restart the timers are re-derived from the
// stored lottery_end_time, and an expired one executes immediately.
//
// The registry owns the timers: Start arms them, Destroy cancels them, and
// every fire re-reads the event so a lottery already claimed elsewhere is
// reported as already_claimed instead of executing twice.
type LotteryTimerService struct {
	mutex     sync.Mutex
	timers    map[string]*eventTimer
	destroyed bool

	eventRepo repositories.EventRepository
	lottery   LotteryService
}

// NewLotteryTimerService creates a new LotteryTimerService
func NewLotteryTimerService(eventRepo repositories.EventRepository, lottery LotteryService) *LotteryTimerService {
	return &LotteryTimerService{
		timers:    make(map[string]*eventTimer),
		eventRepo: eventRepo,
		lottery:   lottery,
	}
}

// Start loads all events and arms a timer for every live lottery. Expired
// or uninitialized-but-overdue lotteries execute during the load.
func (s *LotteryTimerService) Start(ctx context.Context) error {
	events, err := s.eventRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	slog.Info("Lottery timer service starting", "events", len(events))
	for _, event := range events {
		s.ProcessEvent(ctx, event)
	}
	return nil
}

// ProcessEvent initializes, executes or arms the timer for one event. It is
// called for every stored event on Start and for each newly created event.
func (s *LotteryTimerService) ProcessEvent(ctx context.Context, event *models.DisasterEvent) {
	if !event.LotteryEligible() {
		return
	}
	if event.LotteryStatus == models.LotteryStatusEnded {
		s.clearTimer(event.ID.Hex())
		return
	}

	endTime := event.LotteryEndTime
	if event.LotteryStatus == "" {
		endTime = event.CreatedAt.Add(event.LotteryDuration())
	}

	// CheckEvent lazily initializes the lottery and, when the window has
	// already expired, claims and executes it. For a live window it is a
	// no-op beyond initialization.
	result := s.lottery.CheckEvent(ctx, event)

	switch result.Status {
	case models.CheckPending:
		s.armTimer(event.ID, endTime)
	default:
		s.clearTimer(event.ID.Hex())
	}
}

// GetRemainingTime returns how long until the event's timer fires, or false
// when no timer is armed for it.
func (s *LotteryTimerService) GetRemainingTime(eventID primitive.ObjectID) (time.Duration, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.timers[eventID.Hex()]
	if !ok {
		return 0, false
	}

	remaining := time.Until(t.endTime)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// ManuallyExecuteLottery bypasses the timer and executes immediately via
// the shared claim path.
func (s *LotteryTimerService) ManuallyExecuteLottery(ctx context.Context, eventID primitive.ObjectID) (models.EventCheckResult, error) {
	result, err := s.lottery.ExecuteNow(ctx, eventID)
	if err != nil {
		return result, err
	}

	s.clearTimer(eventID.Hex())
	return result, nil
}

// Destroy cancels all pending timers. In-flight executions are not
// interrupted; an already-submitted on-chain call cannot be rolled back.
func (s *LotteryTimerService) Destroy() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, t := range s.timers {
		t.timer.Stop()
	}
	s.timers = make(map[string]*eventTimer)
	s.destroyed = true
	slog.Info("Lottery timer service destroyed")
}

func (s *LotteryTimerService) armTimer(eventID primitive.ObjectID, endTime time.Time) {
	key := eventID.Hex()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.destroyed {
		return
	}
	if existing, ok := s.timers[key]; ok {
		existing.timer.Stop()
	}

	delay := time.Until(endTime)
	if delay < 0 {
		delay = 0
	}

	s.timers[key] = &eventTimer{
		eventID: eventID,
		endTime: endTime,
		timer:   time.AfterFunc(delay, func() { s.fire(eventID) }),
	}
	slog.Info("Lottery timer armed", "eventId", key, "remaining", delay.Round(time.Second))
}

func (s *LotteryTimerService) clearTimer(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t, ok := s.timers[key]; ok {
		t.timer.Stop()
		delete(s.timers, key)
	}
}

// fire runs when a timer elapses. The event is re-read so a lottery that
// was already executed by the batch scheduler loses the claim cleanly.
func (s *LotteryTimerService) fire(eventID primitive.ObjectID) {
	key := eventID.Hex()
	s.clearTimer(key)

	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		slog.Error("Timer fired but event load failed", "error", err, "eventId", key)
		return
	}

	result := s.lottery.CheckEvent(ctx, event)
	slog.Info("Lottery timer fired", "eventId", key, "status", result.Status)
}
