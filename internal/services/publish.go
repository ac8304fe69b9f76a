package services

import (
	"context"

	"rentflow/internal/events"

	"go.uber.org/zap"
)

// publishEvent never fails the caller; the state change has already been written.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *zap.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
			zap.Error(err))
	}
}
