package uow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

func newEvent() shared.DomainEvent {
	ev := shared.NewBaseDomainEvent("TestHappened", "Test", uuid.New(), time.Now())
	return &ev
}

func TestEventCollector_CollectDrainsSources(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot(time.Now())}
	agg.AddDomainEvent(newEvent())
	agg.AddDomainEvent(newEvent())

	var c EventCollector
	c.Collect(agg, nil)
	c.Add(newEvent())

	assert.Len(t, c.Events(), 3)
	assert.Empty(t, agg.GetDomainEvents())
}

func TestEventCollector_Publish(t *testing.T) {
	t.Run("publishes and resets", func(t *testing.T) {
		var c EventCollector
		c.Add(newEvent())
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

		c.Publish(context.Background(), pub, zap.NewNop())

		pub.AssertExpectations(t)
		assert.Empty(t, c.Events())
	})

	t.Run("publisher error is swallowed", func(t *testing.T) {
		var c EventCollector
		c.Add(newEvent())
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down")).Once()

		assert.NotPanics(t, func() {
			c.Publish(context.Background(), pub, zap.NewNop())
		})
		pub.AssertExpectations(t)
	})

	t.Run("nothing to publish", func(t *testing.T) {
		var c EventCollector
		pub := new(mockPublisher)

		c.Publish(context.Background(), pub, zap.NewNop())
		c.Publish(context.Background(), nil, nil)

		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestEventCollector_AfterCommit(t *testing.T) {
	var c EventCollector
	var calls int
	c.AfterCommit(func(context.Context) { calls++ })

	assert.Zero(t, calls, "hooks wait for Publish")
	c.Publish(context.Background(), nil, zap.NewNop())
	assert.Equal(t, 1, calls, "hooks run without a publisher")

	c.Publish(context.Background(), nil, zap.NewNop())
	assert.Equal(t, 1, calls, "hooks run once")
}
