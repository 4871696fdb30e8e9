package services

import (
	"context"
	"fmt"

	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SchedulerServiceImpl implements SchedulerService
var _ SchedulerService = (*SchedulerServiceImpl)(nil)

// SchedulerServiceImpl runs batch lottery checks over the event store. Each
// invocation is stateless; it may run from the periodic ticker inside the
// API server or from the one-shot cmd/scheduler binary under external cron.
type SchedulerServiceImpl struct {
	eventRepo repositories.EventRepository
	lottery   LotteryService
}

// NewSchedulerService creates a new SchedulerServiceImpl
func NewSchedulerService(eventRepo repositories.EventRepository, lottery LotteryService) *SchedulerServiceImpl {
	return &SchedulerServiceImpl{
		eventRepo: eventRepo,
		lottery:   lottery,
	}
}

// RunScheduledCheck scans for events with an active or never-initialized
// lottery and checks each one. Per-event failures are folded into the
// summary and never abort the pass.
func (s *SchedulerServiceImpl) RunScheduledCheck(ctx context.Context) (*models.ScheduleSummary, error) {
	active, err := s.eventRepo.FindByLotteryStatus(ctx, models.LotteryStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active lottery events: %w", err)
	}

	uninitialized, err := s.eventRepo.FindUninitialized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uninitialized events: %w", err)
	}

	candidates := append(active, uninitialized...)
	slog.Info("Lottery scheduler pass starting", "activeEvents", len(active), "uninitializedEvents", len(uninitialized))

	summary := &models.ScheduleSummary{
		ProcessedEvents: len(candidates),
		Results:         make([]models.EventCheckResult, 0, len(candidates)),
	}

	for _, event := range candidates {
		result := s.lottery.CheckEvent(ctx, event)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case models.CheckExecuted:
			summary.ExecutedLotteries++
		case models.CheckFailed:
			summary.Errors++
		}
	}

	if summary.ProcessedEvents == 0 {
		summary.Message = "No lottery events found"
	} else {
		summary.Message = "Lottery check completed"
	}

	slog.Info("Lottery scheduler pass completed",
		"processed", summary.ProcessedEvents,
		"executed", summary.ExecutedLotteries,
		"errors", summary.Errors)

	return summary, nil
}
