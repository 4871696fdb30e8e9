package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/godshand/gods-hand-backend/internal/models"
	"github.com/godshand/gods-hand-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LotteryHandler handles lottery-related HTTP requests
type LotteryHandler struct {
	eventService services.EventService
	scheduler    services.SchedulerService
	timerService *services.LotteryTimerService
}

// NewLotteryHandler creates a new LotteryHandler
func NewLotteryHandler(eventService services.EventService, scheduler services.SchedulerService, timerService *services.LotteryTimerService) *LotteryHandler {
	return &LotteryHandler{
		eventService: eventService,
		scheduler:    scheduler,
		timerService: timerService,
	}
}

// RunCheck handles POST /lottery/run-check. It performs one batch pass and
// returns the summary, mirroring what the periodic ticker does.
func (h *LotteryHandler) RunCheck(c *gin.Context) {
	summary, err := h.scheduler.RunScheduledCheck(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lottery check failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExecuteLottery handles POST /events/:id/lottery/execute — the operator
// escape hatch that bypasses the timer.
func (h *LotteryHandler) ExecuteLottery(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	result, err := h.timerService.ManuallyExecuteLottery(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute lottery: " + err.Error()})
		}
		return
	}

	status := http.StatusOK
	if result.Status == models.CheckFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// GetLotteryStatus handles GET /events/:id/lottery — lottery fields plus
// the live remaining time for UI countdowns.
func (h *LotteryHandler) GetLotteryStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	event, err := h.eventService.GetEventByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event: " + err.Error()})
		}
		return
	}

	response := gin.H{
		"eventId":       event.ID.Hex(),
		"lotteryStatus": event.LotteryStatus,
	}
	if !event.LotteryEndTime.IsZero() {
		response["lotteryEndTime"] = event.LotteryEndTime
	}
	if event.LotteryStatus == models.LotteryStatusEnded {
		response["winner"] = event.LotteryWinner
		response["participantCount"] = event.LotteryParticipantCount
		response["transactionHash"] = event.LotteryTransactionHash
		if event.LotteryError != "" {
			response["error"] = event.LotteryError
		}
	}
	if remaining, ok := h.timerService.GetRemainingTime(id); ok {
		response["remainingMs"] = remaining.Milliseconds()
	}

	c.JSON(http.StatusOK, response)
}
