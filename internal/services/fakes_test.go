package services

import (
	"context"
	"sync"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/pkg/lotterycontract"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeEventRepo is an in-memory EventRepository with the same conditional
// transition semantics as the MongoDB implementation.
type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.DisasterEvent

	initCalls   int
	claimCalls  int
	recordCalls int

	findErr   error
	claimErr  error
	recordErr error
}

func newFakeEventRepo(events ...*models.DisasterEvent) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*models.DisasterEvent)}
	for _, e := range events {
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		repo.events[e.ID.Hex()] = e
	}
	return repo
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.DisasterEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	r.events[event.ID.Hex()] = event
	return nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DisasterEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	event, ok := r.events[id.Hex()]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) FindAll(ctx context.Context) ([]*models.DisasterEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*models.DisasterEvent, 0, len(r.events))
	for _, e := range r.events {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeEventRepo) FindByLotteryStatus(ctx context.Context, status models.LotteryStatus) ([]*models.DisasterEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*models.DisasterEvent
	for _, e := range r.events {
		if e.LotteryStatus == status {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) FindUninitialized(ctx context.Context) ([]*models.DisasterEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*models.DisasterEvent
	for _, e := range r.events {
		if e.LotteryStatus == "" && e.DisasterHash != "" {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, event *models.DisasterEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID.Hex()] = event
	return nil
}

func (r *fakeEventRepo) InitializeLottery(ctx context.Context, id primitive.ObjectID, endTime time.Time, durationHours int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initCalls++

	event, ok := r.events[id.Hex()]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if event.LotteryStatus != "" {
		return false, nil
	}
	event.LotteryStatus = models.LotteryStatusActive
	event.LotteryEndTime = endTime
	event.LotteryDurationHours = durationHours
	return true, nil
}

func (r *fakeEventRepo) ClaimLotteryExecution(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimCalls++
	if r.claimErr != nil {
		return false, r.claimErr
	}

	event, ok := r.events[id.Hex()]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if event.LotteryStatus != models.LotteryStatusActive {
		return false, nil
	}
	event.LotteryStatus = models.LotteryStatusEnded
	return true, nil
}

func (r *fakeEventRepo) RecordLotteryOutcome(ctx context.Context, id primitive.ObjectID, outcome *models.LotteryOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordCalls++
	if r.recordErr != nil {
		return r.recordErr
	}

	event, ok := r.events[id.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}
	event.LotteryStatus = models.LotteryStatusEnded
	if outcome.Success {
		event.LotteryWinner = outcome.Winner
		event.LotteryParticipantCount = outcome.ParticipantCount
		event.LotteryPrizeAmount = outcome.PrizeAmount
		event.LotteryTransactionHash = outcome.TransactionHash
		event.LotteryGasUsed = outcome.GasUsed
	} else {
		event.LotteryError = outcome.Error
	}
	return nil
}

func (r *fakeEventRepo) get(id primitive.ObjectID) *models.DisasterEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[id.Hex()]
}

// fakeGateway counts ExecuteLottery calls and returns a canned result.
type fakeGateway struct {
	mu     sync.Mutex
	result *lotterycontract.Result
	err    error
	calls  int
}

func (g *fakeGateway) ExecuteLottery(ctx context.Context, disasterHash string) (*lotterycontract.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &lotterycontract.Result{
		Winner:           "0x1111111111111111111111111111111111111111",
		ParticipantCount: 5,
		TransactionHash:  "0xabc123",
		GasUsed:          "21000",
	}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
