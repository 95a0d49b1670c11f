package trade

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(GenerateOrderNumber(testNow), uuid.New(), FulfillmentPickup, "", uuid.New(), testNow)
	require.NoError(t, err)
	return o
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusReady, OrderStatusProcessing, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDerivePaymentState(t *testing.T) {
	assert.Equal(t, PaymentStateUnpaid, DerivePaymentState(dec("0"), dec("100")))
	assert.Equal(t, PaymentStateUnpaid, DerivePaymentState(dec("0"), dec("0")))
	assert.Equal(t, PaymentStatePartial, DerivePaymentState(dec("40"), dec("100")))
	assert.Equal(t, PaymentStatePaid, DerivePaymentState(dec("100"), dec("100")))
	assert.Equal(t, PaymentStatePaid, DerivePaymentState(dec("120"), dec("100")))
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending unpaid order", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStateUnpaid, o.PaymentStatus)
		assert.True(t, o.TotalAmount.IsZero())
		assert.Contains(t, o.OrderNumber, "ORD-20260301-")
	})

	t.Run("delivery requires address", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), FulfillmentDelivery, " ", uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects unknown fulfillment", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), FulfillmentType("drone"), "", uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestOrder_Totals(t *testing.T) {
	o := newTestOrder(t)

	first, err := o.AddItem(uuid.New(), dec("2"), dec("15"), testNow)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), dec("1"), dec("7.5"), testNow)
	require.NoError(t, err)

	require.NoError(t, o.SetCharges(dec("2.5"), dec("5"), testNow))
	assert.True(t, o.Subtotal.Equal(dec("37.5")))
	assert.True(t, o.TotalAmount.Equal(dec("40")))

	old, err := o.UpdateItem(first.ID, dec("3"), dec("15"), testNow)
	require.NoError(t, err)
	assert.True(t, old.Equal(dec("2")))
	assert.True(t, o.Subtotal.Equal(dec("52.5")))
	assert.True(t, o.TotalAmount.Equal(dec("55")))

	removed, err := o.RemoveItem(first.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ID)
	assert.Len(t, o.Items, 1)
	assert.True(t, o.Subtotal.Equal(dec("7.5")))
	assert.True(t, o.TotalAmount.Equal(dec("10")))
}

func TestOrder_TotalsNeverNegative(t *testing.T) {
	o := newTestOrder(t)
	item, err := o.AddItem(uuid.New(), dec("1"), dec("10"), testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, o.SetCharges(dec("11"), dec("0"), testNow), shared.ErrInvalidInput)
	assert.True(t, o.DiscountAmount.IsZero())

	require.NoError(t, o.SetCharges(dec("10"), dec("0"), testNow))
	_, err = o.RemoveItem(item.ID, testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Len(t, o.Items, 1)
	assert.True(t, o.TotalAmount.IsZero())
}

func TestOrder_ItemsOnlyWhilePending(t *testing.T) {
	o := newTestOrder(t)
	item, err := o.AddItem(uuid.New(), dec("1"), dec("10"), testNow)
	require.NoError(t, err)

	_, err = o.AddItem(item.ProductID, dec("1"), dec("10"), testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, o.TransitionTo(OrderStatusConfirmed, "", testNow))

	_, err = o.AddItem(uuid.New(), dec("1"), dec("10"), testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = o.RemoveItem(item.ID, testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = o.UpdateItem(item.ID, dec("2"), dec("10"), testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.ErrorIs(t, o.SetCharges(dec("1"), dec("0"), testNow), shared.ErrInvalidState)
}

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("confirm requires items", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.TransitionTo(OrderStatusConfirmed, "", testNow), shared.ErrInvalidState)
	})

	t.Run("cancel requires reason", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.TransitionTo(OrderStatusCancelled, "", testNow), shared.ErrInvalidInput)
		require.NoError(t, o.TransitionTo(OrderStatusCancelled, "customer changed mind", testNow))
		assert.NotNil(t, o.CancelledAt)
		assert.Equal(t, "customer changed mind", o.CancelReason)
	})

	t.Run("forward path with events", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.AddItem(uuid.New(), dec("1"), dec("10"), testNow)
		require.NoError(t, err)

		assert.True(t, o.NeedsStockDeduction(OrderStatusShipped))
		assert.False(t, o.NeedsStockDeduction(OrderStatusCancelled))

		require.NoError(t, o.TransitionTo(OrderStatusShipped, "", testNow))
		o.MarkStockDeducted()
		assert.NotNil(t, o.ConfirmedAt)
		assert.False(t, o.NeedsStockDeduction(OrderStatusDelivered))

		require.NoError(t, o.TransitionTo(OrderStatusDelivered, "", testNow))
		assert.NotNil(t, o.DeliveredAt)
		assert.ErrorIs(t, o.TransitionTo(OrderStatusCancelled, "late", testNow), shared.ErrInvalidState)

		events := o.GetDomainEvents()
		require.Len(t, events, 2)
		last, ok := events[1].(*OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, OrderStatusShipped, last.From)
		assert.Equal(t, OrderStatusDelivered, last.To)
	})

	t.Run("repeated confirm is a no-op", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.AddItem(uuid.New(), dec("1"), dec("10"), testNow)
		require.NoError(t, err)
		require.NoError(t, o.TransitionTo(OrderStatusConfirmed, "", testNow))
		o.MarkStockDeducted()
		version := o.GetVersion()

		assert.True(t, o.IsRepeatedConfirm(OrderStatusConfirmed))
		require.NoError(t, o.TransitionTo(OrderStatusConfirmed, "", testNow.Add(time.Hour)))
		assert.Equal(t, OrderStatusConfirmed, o.Status)
		assert.Equal(t, version, o.GetVersion())
		assert.Len(t, o.GetDomainEvents(), 1)
		assert.False(t, o.NeedsStockDeduction(OrderStatusConfirmed))

		assert.ErrorIs(t, o.TransitionTo(OrderStatusPending, "", testNow), shared.ErrInvalidState)
	})
}

func TestOrder_Payments(t *testing.T) {
	o := newTestOrder(t)
	_, err := o.AddItem(uuid.New(), dec("4"), dec("25"), testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, o.EnsureAcceptsPayment(dec("100.01")), shared.ErrAmountExceedsBalance)
	require.NoError(t, o.EnsureAcceptsPayment(dec("40")))

	o.ApplyAmountPaid(dec("40"), testNow)
	assert.Equal(t, PaymentStatePartial, o.PaymentStatus)
	assert.True(t, o.Outstanding().Equal(dec("60")))

	o.ApplyAmountPaid(dec("100"), testNow)
	assert.Equal(t, PaymentStatePaid, o.PaymentStatus)
	assert.ErrorIs(t, o.EnsureAcceptsPayment(dec("1")), shared.ErrInvalidState)

	assert.False(t, o.ShouldCreditCustomer())
	require.NoError(t, o.TransitionTo(OrderStatusDelivered, "", testNow))
	assert.True(t, o.ShouldCreditCustomer())
	o.MarkCustomerCredited()
	assert.False(t, o.ShouldCreditCustomer())
}

func TestOrder_CancelledRejectsPayment(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(OrderStatusCancelled, "duplicate", testNow))

	assert.ErrorIs(t, o.EnsureAcceptsPayment(dec("1")), shared.ErrInvalidState)
	assert.NoError(t, o.CanDelete())
}

func TestOrderItem_Margin(t *testing.T) {
	o := newTestOrder(t)
	item, err := o.AddItem(uuid.New(), dec("2"), dec("15"), testNow)
	require.NoError(t, err)

	_, ok := o.Items[0].Margin()
	assert.False(t, ok)

	require.NoError(t, o.SnapshotCost(item.ID, dec("9.5")))
	margin, ok := o.Items[0].Margin()
	require.True(t, ok)
	assert.True(t, margin.Equal(dec("11")))
}
