package services

import (
	"context"
	"time"

	redisclient "github.com/grokmeetu/meetu-backend/internal/clients/redis"
	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/sse"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// ModelNotifier fans model lifecycle events out to SSE subscribers. When a
// Redis bus is configured events go through it so other processes see them
// too; the bus forwarder delivers them back into the local hub.
type ModelNotifier struct {
	log *logger.Logger
	hub *sse.Hub
	bus redisclient.EventBus
}

func NewModelNotifier(log *logger.Logger, hub *sse.Hub, bus redisclient.EventBus) *ModelNotifier {
	return &ModelNotifier{
		log: log.With("service", "ModelNotifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *ModelNotifier) publish(event sse.Event, data any) {
	if n == nil {
		return
	}
	msg := sse.Message{Channel: sse.ChannelModels, Event: event, Data: data}
	if n.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("Failed to publish event to bus", "event", event, "error", err)
		}
		return
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}

func (n *ModelNotifier) ModelReloaded(info types.ModelVersionInfo) {
	n.publish(sse.EventModelReloaded, info)
}

func (n *ModelNotifier) TrainingStarted(testSize float64) {
	n.publish(sse.EventTrainingStarted, map[string]any{"test_size": testSize})
}

func (n *ModelNotifier) TrainingCompleted(info types.ModelVersionInfo) {
	n.publish(sse.EventTrainingCompleted, info)
}

func (n *ModelNotifier) TrainingFailed(err error) {
	n.publish(sse.EventTrainingFailed, map[string]any{"error": err.Error()})
}

func (n *ModelNotifier) CacheInvalidated(userID string) {
	n.publish(sse.EventCacheInvalidated, map[string]any{"user_id": userID})
}
