package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus is stopped")

// Bus delivers ledger events to in-process handlers. Delivery is
// synchronous and follows publish order; one failing handler does not
// keep the event from the others.
type Bus struct {
	handlers *registry
	logger   *zap.Logger
	stopped  atomic.Bool

	delivered atomic.Int64
	failed    atomic.Int64
}

// BusStats is a snapshot of delivery counters
type BusStats struct {
	Handlers  int   `json:"handlers"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

// NewBus creates a running bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: newRegistry(),
		logger:   logger.Named("events"),
	}
}

// Publish hands every event to its handlers and joins their errors
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}

	var errs []error
	for _, ev := range events {
		for _, h := range b.handlers.handlersFor(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.failed.Add(1)
				b.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("aggregate_id", ev.AggregateID().String()),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", ev.EventType(), err))
				continue
			}
			b.delivered.Add(1)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// Subscribe registers handler for eventTypes, or for the handler's own
// EventTypes when none are given. An empty list subscribes to everything.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.handlers.add(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type
func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.handlers.remove(handler)
}

// Start re-opens the bus for publishing
func (b *Bus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started", zap.Int("handlers", b.handlers.count()))
	return nil
}

// Stop rejects further publishes. Deliveries already running finish on
// their caller's goroutine.
func (b *Bus) Stop(context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("Event bus stopped",
		zap.Int64("delivered", b.delivered.Load()),
		zap.Int64("failed", b.failed.Load()))
	return nil
}

// Stats returns the delivery counters
func (b *Bus) Stats() BusStats {
	return BusStats{
		Handlers:  b.handlers.count(),
		Delivered: b.delivered.Load(),
		Failed:    b.failed.Load(),
	}
}

var _ shared.EventBus = (*Bus)(nil)
