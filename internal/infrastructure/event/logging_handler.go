package event

import (
	"context"

	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LoggingHandler writes every published event as one structured log line
type LoggingHandler struct {
	serializer *Serializer
	logger     *zap.Logger
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(serializer *Serializer, log *zap.Logger) *LoggingHandler {
	return &LoggingHandler{serializer: serializer, logger: log.Named("events")}
}

// EventTypes subscribes to all events
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its JSON payload
func (h *LoggingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}
	logger.Enrich(ctx, h.logger).Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

var _ shared.EventHandler = (*LoggingHandler)(nil)
