package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingHandler remembers what it was given
type recordingHandler struct {
	types []string
	err   error
	panic bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, ev)
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func newReservedEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	record, err := inventory.NewInventoryRecord(uuid.New(), time.Now())
	require.NoError(t, err)
	return inventory.NewStockReservedEvent(record, decimal.NewFromInt(3), time.Now())
}

func newAlertEvent() shared.DomainEvent {
	alert := inventory.EvaluateStockLevel(uuid.New(), decimal.Zero, decimal.NewFromInt(5), time.Now())
	return inventory.NewStockAlertRaisedEvent(alert)
}

func TestBus_PublishRoutesByType(t *testing.T) {
	bus := NewBus(zap.NewNop())

	alerts := &recordingHandler{types: []string{inventory.EventTypeStockAlertRaised}}
	reserved := &recordingHandler{}
	everything := &recordingHandler{}
	bus.Subscribe(alerts)
	bus.Subscribe(reserved, inventory.EventTypeStockReserved)
	bus.Subscribe(everything)

	err := bus.Publish(context.Background(), newReservedEvent(t), newAlertEvent(), newAlertEvent())

	require.NoError(t, err)
	assert.Equal(t, 2, alerts.count())
	assert.Equal(t, 1, reserved.count())
	assert.Equal(t, 3, everything.count())
	assert.Equal(t, BusStats{Handlers: 3, Delivered: 6}, bus.Stats())
}

func TestBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(nil)

	failing := &recordingHandler{err: errors.New("notifier down")}
	panicking := &recordingHandler{panic: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing, inventory.EventTypeStockAlertRaised)
	bus.Subscribe(panicking, inventory.EventTypeStockAlertRaised)
	bus.Subscribe(healthy, inventory.EventTypeStockAlertRaised)

	err := bus.Publish(context.Background(), newAlertEvent())

	require.Error(t, err)
	assert.ErrorContains(t, err, "notifier down")
	assert.ErrorContains(t, err, "handler panicked")
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.Stats().Failed)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h, inventory.EventTypeStockReserved, inventory.EventTypeStockReleased)

	require.NoError(t, bus.Publish(context.Background(), newReservedEvent(t)))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newReservedEvent(t)))

	assert.Equal(t, 1, h.count())
	assert.Equal(t, 0, bus.Stats().Handlers)
}

func TestBus_StopRejectsPublish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)
	ctx := context.Background()

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, newAlertEvent()), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, newAlertEvent()))
	assert.Equal(t, 1, h.count())
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newAlertEvent())
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, h.count())
}
