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

// EventHandler handles disaster event HTTP requests
type EventHandler struct {
	eventService services.EventService
	timerService *services.LotteryTimerService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService services.EventService, timerService *services.LotteryTimerService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		timerService: timerService,
	}
}

// CreateEventRequest is the intake payload for a new disaster event
type CreateEventRequest struct {
	Title                   string  `json:"title" binding:"required"`
	Description             string  `json:"description"`
	DisasterLocation        string  `json:"disasterLocation"`
	EstimatedAmountRequired float64 `json:"estimatedAmountRequired"`
	Source                  string  `json:"source"`
	DisasterHash            string  `json:"disasterHash"`
	LotteryDurationHours    int     `json:"lotteryDurationHours"`
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var request CreateEventRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &models.DisasterEvent{
		Title:                   request.Title,
		Description:             request.Description,
		DisasterLocation:        request.DisasterLocation,
		EstimatedAmountRequired: request.EstimatedAmountRequired,
		Source:                  request.Source,
		DisasterHash:            request.DisasterHash,
		LotteryDurationHours:    request.LotteryDurationHours,
	}

	created, err := h.eventService.CreateEvent(c.Request.Context(), event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event: " + err.Error()})
		return
	}

	// Hand the new event to the timer service so its lottery is
	// initialized and the countdown armed right away.
	h.timerService.ProcessEvent(c.Request.Context(), created)

	c.JSON(http.StatusCreated, created)
}

// GetEventByID handles GET /events/:id
func (h *EventHandler) GetEventByID(c *gin.Context) {
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
	c.JSON(http.StatusOK, event)
}

// GetAllEvents handles GET /events
func (h *EventHandler) GetAllEvents(c *gin.Context) {
	events, err := h.eventService.GetAllEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
