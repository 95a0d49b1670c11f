package event

import (
	"context"
	"sync/atomic"

	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler runs the wrapped handler at most once per event.
// Keys are scoped by handler name so several handlers can share a store.
type IdempotentHandler struct {
	name    string
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// IdempotencyStats counts what the wrapper did with deliveries
type IdempotencyStats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// NewIdempotentHandler wraps handler. A zero TTL in config falls back to
// shared.AlertRedeliveryWindow.
func NewIdempotentHandler(
	name string,
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		name:    name,
		handler: handler,
		store:   store,
		config:  config.WithDefaults(),
		logger:  logger,
	}
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Key returns the store key used for ev
func (h *IdempotentHandler) Key(ev shared.DomainEvent) string {
	return shared.DeliveryKey(h.name, ev.EventID())
}

// Handle marks the event before running the handler. If the store is
// unavailable the event is still handled.
func (h *IdempotentHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if !h.config.Enabled || h.store == nil {
		return h.run(ctx, ev)
	}

	key := h.Key(ev)
	fresh, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency store unavailable, handling event anyway",
			zap.String("handler", h.name),
			zap.String("key", key),
			zap.Error(err))
	case !fresh:
		h.skipped.Add(1)
		h.logger.Debug("Skipping duplicate event",
			zap.String("handler", h.name),
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()))
		return nil
	}

	return h.run(ctx, ev)
}

func (h *IdempotentHandler) run(ctx context.Context, ev shared.DomainEvent) error {
	if err := h.handler.Handle(ctx, ev); err != nil {
		// The key is kept; a retry is possible once it expires
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the wrapper's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed: h.processed.Load(),
		Skipped:   h.skipped.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
