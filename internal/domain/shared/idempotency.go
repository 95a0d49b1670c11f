package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AlertRedeliveryWindow is how long a handled delivery is remembered. A stock
// alert event redelivered inside the window is dropped; the alert generator
// replaces alerts on every evaluation, so anything older is a new alert.
const AlertRedeliveryWindow = 6 * time.Hour

// IdempotencyStore remembers which event deliveries a handler already acted on
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns false when key is
	// already recorded and not yet expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig controls delivery deduplication on the event bus
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// WithDefaults returns c with a zero or negative TTL replaced by
// AlertRedeliveryWindow
func (c IdempotencyConfig) WithDefaults() IdempotencyConfig {
	if c.TTL <= 0 {
		c.TTL = AlertRedeliveryWindow
	}
	return c
}

// DeliveryKey scopes an event to one handler, so handlers sharing a store
// each see the event once
func DeliveryKey(handler string, eventID uuid.UUID) string {
	return handler + ":" + eventID.String()
}
