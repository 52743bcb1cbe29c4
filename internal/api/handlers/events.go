package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
)

// EventsHandler exposes the review event log to admins.
type EventsHandler struct {
	events *services.EventService
}

func NewEventsHandler(events *services.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

func (h *EventsHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	events, err := h.events.Recent(limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to load events", err)
		return
	}

	utils.SendSuccess(c, "Events retrieved successfully", events)
}
