package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeEvent(endTime time.Time) *models.DisasterEvent {
	return &models.DisasterEvent{
		ID:                   primitive.NewObjectID(),
		Title:                "Flood Relief",
		DisasterHash:         "0x1234",
		LotteryStatus:        models.LotteryStatusActive,
		LotteryDurationHours: 72,
		LotteryEndTime:       endTime,
		CreatedAt:            endTime.Add(-72 * time.Hour),
	}
}

func TestCheckEvent_ExecutesExpiredLottery(t *testing.T) {
	event := activeEvent(time.Now().Add(-time.Minute))
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckExecuted, result.Status)
	require.Equal(t, "0x1111111111111111111111111111111111111111", result.Winner)
	require.Equal(t, "0xabc123", result.TransactionHash)
	require.Equal(t, 1, gateway.callCount())

	stored := repo.get(event.ID)
	require.Equal(t, models.LotteryStatusEnded, stored.LotteryStatus)
	require.Equal(t, result.Winner, stored.LotteryWinner)
	require.Equal(t, int64(5), stored.LotteryParticipantCount)
	require.Equal(t, "21000", stored.LotteryGasUsed)
}

func TestCheckEvent_PendingPerformsNoWrites(t *testing.T) {
	event := activeEvent(time.Now().Add(2 * time.Hour))
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckPending, result.Status)
	require.InDelta(t, 120, result.MinutesRemaining, 1)
	require.Equal(t, 0, repo.initCalls)
	require.Equal(t, 0, repo.claimCalls)
	require.Equal(t, 0, repo.recordCalls)
	require.Equal(t, 0, gateway.callCount())
}

func TestCheckEvent_SkipsIneligibleAndEnded(t *testing.T) {
	noHash := &models.DisasterEvent{ID: primitive.NewObjectID(), Title: "No hash", CreatedAt: time.Now()}
	ended := activeEvent(time.Now().Add(-time.Hour))
	ended.LotteryStatus = models.LotteryStatusEnded

	repo := newFakeEventRepo(noHash, ended)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), noHash)
	require.Equal(t, models.CheckSkipped, result.Status)
	require.Equal(t, "missing disaster hash", result.Reason)

	result = svc.CheckEvent(context.Background(), ended)
	require.Equal(t, models.CheckSkipped, result.Status)
	require.Equal(t, "lottery already ended", result.Reason)

	require.Equal(t, 0, gateway.callCount())
}

func TestCheckEvent_InitializesFreshEvent(t *testing.T) {
	event := &models.DisasterEvent{
		ID:           primitive.NewObjectID(),
		Title:        "Quake Relief",
		DisasterHash: "0x5678",
		CreatedAt:    time.Now(),
	}
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckPending, result.Status)
	require.Equal(t, 1, repo.initCalls)
	require.Equal(t, 0, gateway.callCount())

	stored := repo.get(event.ID)
	require.Equal(t, models.LotteryStatusActive, stored.LotteryStatus)
	require.Equal(t, models.DefaultLotteryDurationHours, stored.LotteryDurationHours)
	require.WithinDuration(t, event.CreatedAt.Add(72*time.Hour), stored.LotteryEndTime, time.Second)
}

func TestCheckEvent_InitializesAndExecutesOverdueEvent(t *testing.T) {
	// Never-initialized event whose window expired before any pass saw it:
	// a single check must initialize, claim and execute.
	event := &models.DisasterEvent{
		ID:                   primitive.NewObjectID(),
		Title:                "Old Quake Relief",
		DisasterHash:         "0x5678",
		LotteryDurationHours: 72,
		CreatedAt:            time.Now().Add(-73 * time.Hour),
	}
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckExecuted, result.Status)
	require.Equal(t, 1, repo.initCalls)
	require.Equal(t, 1, gateway.callCount())
	require.Equal(t, models.LotteryStatusEnded, repo.get(event.ID).LotteryStatus)
}

func TestCheckEvent_LostClaimSkipsChainCall(t *testing.T) {
	// The stored record already ended (another scheduler won the claim), but
	// the caller holds a stale snapshot that still says active.
	event := activeEvent(time.Now().Add(-time.Minute))
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	stale := *event
	first := svc.CheckEvent(context.Background(), event)
	second := svc.CheckEvent(context.Background(), &stale)

	require.Equal(t, models.CheckExecuted, first.Status)
	require.Equal(t, models.CheckAlreadyClaimed, second.Status)
	require.Equal(t, 1, gateway.callCount())
}

func TestCheckEvent_RecordsGatewayFailure(t *testing.T) {
	event := activeEvent(time.Now().Add(-time.Minute))
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{err: errors.New("rpc unreachable")}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckFailed, result.Status)
	require.Contains(t, result.Error, "rpc unreachable")

	stored := repo.get(event.ID)
	require.Equal(t, models.LotteryStatusEnded, stored.LotteryStatus)
	require.Equal(t, "rpc unreachable", stored.LotteryError)
}

func TestCheckEvent_ReportsWriteFailureAfterExecution(t *testing.T) {
	event := activeEvent(time.Now().Add(-time.Minute))
	repo := newFakeEventRepo(event)
	repo.recordErr = errors.New("mongo down")
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result := svc.CheckEvent(context.Background(), event)

	require.Equal(t, models.CheckFailed, result.Status)
	require.Contains(t, result.Error, "0xabc123")
	require.Equal(t, 1, gateway.callCount())
}

func TestExecuteNow_BypassesExpiryButNotClaim(t *testing.T) {
	event := activeEvent(time.Now().Add(48 * time.Hour))
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result, err := svc.ExecuteNow(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, models.CheckExecuted, result.Status)
	require.Equal(t, 1, gateway.callCount())

	// Second manual execution loses the claim.
	result, err = svc.ExecuteNow(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, models.CheckAlreadyClaimed, result.Status)
	require.Equal(t, 1, gateway.callCount())
}

func TestExecuteNow_InitializesUninitializedEvent(t *testing.T) {
	event := &models.DisasterEvent{
		ID:           primitive.NewObjectID(),
		Title:        "Fresh Relief",
		DisasterHash: "0x9999",
		CreatedAt:    time.Now(),
	}
	repo := newFakeEventRepo(event)
	gateway := &fakeGateway{}
	svc := NewLotteryService(repo, gateway)

	result, err := svc.ExecuteNow(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, models.CheckExecuted, result.Status)
	require.Equal(t, 1, repo.initCalls)
	require.Equal(t, models.LotteryStatusEnded, repo.get(event.ID).LotteryStatus)
}

func TestExecuteNow_UnknownEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewLotteryService(repo, &fakeGateway{})

	_, err := svc.ExecuteNow(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
}
