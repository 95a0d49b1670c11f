package uow

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// EventSource is anything that buffers domain events
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// EventCollector gathers the events raised inside a unit of work so they are
// published only after the transaction commits
type EventCollector struct {
	events []shared.DomainEvent
	hooks  []func(context.Context)
}

// Collect drains the pending events of each source
func (c *EventCollector) Collect(sources ...EventSource) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		c.events = append(c.events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
}

// Add appends events that are not owned by an aggregate
func (c *EventCollector) Add(events ...shared.DomainEvent) {
	c.events = append(c.events, events...)
}

// AfterCommit queues fn to run on Publish, after the unit of work commits
func (c *EventCollector) AfterCommit(fn func(ctx context.Context)) {
	c.hooks = append(c.hooks, fn)
}

// Events returns the collected events in raise order
func (c *EventCollector) Events() []shared.DomainEvent {
	return c.events
}

// Publish hands the collected events to publisher. Delivery failures are
// logged; the committed ledger state is not affected by them.
func (c *EventCollector) Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger) {
	for _, fn := range c.hooks {
		fn(ctx)
	}
	c.hooks = nil
	if publisher == nil || len(c.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, c.events...); err != nil && logger != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("count", len(c.events)),
			zap.Error(err))
	}
	c.events = nil
}
