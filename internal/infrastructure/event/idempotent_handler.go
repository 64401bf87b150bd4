package event

import (
	"context"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// eventKeyPrefix keeps event ids apart from request keys in a shared store
const eventKeyPrefix = "event:"

// IdempotentHandler runs the wrapped handler at most once per event id
// within the TTL, so a re-published event is not counted twice
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler wraps handler with deduplication backed by store
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes returns the event types of the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its id was already seen. A store failure
// does not drop the event: it is processed and the failure logged.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := eventKeyPrefix + event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		h.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	return h.handler.Handle(ctx, event)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
