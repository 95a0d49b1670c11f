package trade

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestPurchase(t *testing.T) *Purchase {
	t.Helper()
	p, err := NewPurchase(uuid.New(), uuid.New(), dec("10"), dec("20"), PurchaseCosts{
		Packaging: dec("5"),
		Transport: dec("12.5"),
		Other:     dec("2.5"),
	}, uuid.New(), testNow)
	require.NoError(t, err)
	return p
}

func TestNewPurchase(t *testing.T) {
	t.Run("computes grand total", func(t *testing.T) {
		p := newTestPurchase(t)

		assert.Equal(t, PurchaseStatusPending, p.Status)
		assert.True(t, p.GrandTotal.Equal(dec("220")), "grand total %s", p.GrandTotal)
		assert.True(t, p.IsPending())
	})

	t.Run("rejects invalid terms", func(t *testing.T) {
		_, err := NewPurchase(uuid.New(), uuid.New(), dec("0"), dec("1"), PurchaseCosts{}, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPurchase(uuid.New(), uuid.New(), dec("1"), dec("-1"), PurchaseCosts{}, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPurchase(uuid.New(), uuid.New(), dec("1"), dec("1"), PurchaseCosts{Transport: dec("-1")}, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewPurchase(uuid.Nil, uuid.New(), dec("1"), dec("1"), PurchaseCosts{}, uuid.New(), testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPurchase_Update(t *testing.T) {
	p := newTestPurchase(t)

	require.NoError(t, p.Update(dec("4"), dec("25"), PurchaseCosts{}, "re-quoted", testNow))
	assert.True(t, p.GrandTotal.Equal(dec("100")))
	assert.Equal(t, "re-quoted", p.Notes)

	require.NoError(t, p.Complete(uuid.New(), testNow))
	err := p.Update(dec("1"), dec("1"), PurchaseCosts{}, "", testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPurchase_Complete(t *testing.T) {
	p := newTestPurchase(t)
	actor := uuid.New()

	require.NoError(t, p.Complete(actor, testNow))

	assert.Equal(t, PurchaseStatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*PurchaseCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, actor, ev.CompletedBy)
	assert.True(t, ev.GrandTotal.Equal(p.GrandTotal))

	assert.ErrorIs(t, p.Complete(actor, testNow), shared.ErrInvalidState)
	assert.ErrorIs(t, p.Cancel("late", testNow), shared.ErrInvalidState)
	assert.ErrorIs(t, p.CanDelete(), shared.ErrInvalidState)
}

func TestPurchase_Cancel(t *testing.T) {
	p := newTestPurchase(t)

	require.NoError(t, p.Cancel("supplier out of stock", testNow))

	assert.Equal(t, PurchaseStatusCancelled, p.Status)
	assert.Equal(t, "supplier out of stock", p.CancelReason)
	assert.NoError(t, p.CanDelete())
	assert.ErrorIs(t, p.Complete(uuid.New(), testNow), shared.ErrInvalidState)
}
