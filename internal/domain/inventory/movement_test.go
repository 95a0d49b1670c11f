package inventory

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementType_Direction(t *testing.T) {
	assert.True(t, MovementTypePurchase.CanIncrease())
	assert.False(t, MovementTypePurchase.CanDecrease())
	assert.True(t, MovementTypeSale.CanDecrease())
	assert.False(t, MovementTypeSale.CanIncrease())
	assert.True(t, MovementTypeAdjustment.CanIncrease())
	assert.True(t, MovementTypeAdjustment.CanDecrease())
	assert.False(t, MovementType("transfer").IsValid())
}

func TestNewMovement(t *testing.T) {
	productID := uuid.New()
	actorID := uuid.New()

	t.Run("creates movement", func(t *testing.T) {
		ref := PurchaseRef(uuid.New())
		m, err := NewMovement(productID, MovementTypePurchase, dec("5"), dec("2"), dec("5"), ref, actorID, testNow)

		require.NoError(t, err)
		assert.Equal(t, ref, m.Reference)
		assert.Equal(t, actorID, m.ActorID)
		assert.True(t, m.TotalCost().Equal(dec("10")))
		assert.True(t, m.IsInbound())
	})

	tests := []struct {
		name string
		typ  MovementType
		qty  string
		bal  string
		ref  Reference
	}{
		{"zero quantity", MovementTypeSale, "0", "1", OrderItemRef(uuid.New())},
		{"sale with positive delta", MovementTypeSale, "1", "1", OrderItemRef(uuid.New())},
		{"purchase with negative delta", MovementTypePurchase, "-1", "1", PurchaseRef(uuid.New())},
		{"negative balance", MovementTypeSale, "-1", "-1", OrderItemRef(uuid.New())},
		{"missing reference id", MovementTypeSale, "-1", "1", Reference{Kind: ReferenceKindOrderItem}},
		{"unknown reference kind", MovementTypeSale, "-1", "1", Reference{Kind: "invoice", ID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewMovement(productID, tt.typ, dec(tt.qty), dec("1"), dec(tt.bal), tt.ref, actorID, testNow)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}
