package finance

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	orderID := uuid.New()

	t.Run("defaults to completed", func(t *testing.T) {
		p, err := NewPayment(orderID, dec("40"), PaymentMethodCash, "", uuid.New(), testNow)
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusCompleted, p.Status)
		assert.True(t, p.Counts())
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePaymentRecorded, p.GetDomainEvents()[0].EventType())
	})

	t.Run("pending does not count", func(t *testing.T) {
		p, err := NewPayment(orderID, dec("40"), PaymentMethodMobileMoney, PaymentStatusPending, uuid.New(), testNow)
		require.NoError(t, err)
		assert.False(t, p.Counts())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewPayment(orderID, dec("0"), PaymentMethodCash, "", uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPayment(orderID, dec("1"), PaymentMethod("barter"), "", uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPayment(orderID, dec("1"), PaymentMethodCash, PaymentStatusReversed, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPayment(uuid.Nil, dec("1"), PaymentMethodCash, "", uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPayment_Lifecycle(t *testing.T) {
	p, err := NewPayment(uuid.New(), dec("40"), PaymentMethodCash, PaymentStatusPending, uuid.New(), testNow)
	require.NoError(t, err)

	require.NoError(t, p.CanDelete())
	require.NoError(t, p.Update(dec("45"), PaymentMethodCard, testNow))
	require.NoError(t, p.Complete(testNow))
	assert.ErrorIs(t, p.Complete(testNow), shared.ErrInvalidState)
	assert.ErrorIs(t, p.CanDelete(), shared.ErrInvalidState)

	require.NoError(t, p.Reverse("duplicate", testNow))
	assert.False(t, p.Counts())
	assert.Equal(t, "duplicate", p.ReversalReason)
	assert.NotNil(t, p.ReversedAt)
	require.NoError(t, p.CanDelete())

	assert.ErrorIs(t, p.Reverse("again", testNow), shared.ErrInvalidState)
	assert.ErrorIs(t, p.Update(dec("1"), PaymentMethodCash, testNow), shared.ErrInvalidState)
}
