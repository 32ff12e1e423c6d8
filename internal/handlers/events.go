package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/sse"
)

// EventsHandler streams model lifecycle events (reloads, training runs,
// cache invalidations) to subscribers.
type EventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewEventsHandler(log *logger.Logger, hub *sse.Hub) *EventsHandler {
	return &EventsHandler{
		log: log.With("handler", "EventsHandler"),
		hub: hub,
	}
}

// GET /api/events
func (h *EventsHandler) Stream(c *gin.Context) {
	client := h.hub.NewClient()
	h.hub.AddChannel(client, sse.ChannelModels)
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
