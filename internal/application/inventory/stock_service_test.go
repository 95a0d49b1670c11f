package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/ledger/internal/application/catalog"
	appinventory "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newProduct(t *testing.T, stack *testutil.Stack, code, threshold string) uuid.UUID {
	t.Helper()
	product, err := stack.Services.Products.Create(context.Background(), catalog.CreateProductRequest{
		Code:              code,
		Name:              "Product " + code,
		Unit:              "pcs",
		BuyingPrice:       dec("8"),
		SellingPrice:      dec("12"),
		LowStockThreshold: dec(threshold),
		ActorID:           testutil.ActorID(),
	})
	require.NoError(t, err)
	return product.ID
}

func credit(t *testing.T, stack *testutil.Stack, productID uuid.UUID, qty, cost string) *appinventory.StockChangeResponse {
	t.Helper()
	resp, err := stack.Services.Stock.Credit(context.Background(), appinventory.CreditStockRequest{
		ProductID:     productID,
		Quantity:      dec(qty),
		UnitCost:      dec(cost),
		Type:          inventory.MovementTypePurchase,
		ReferenceKind: inventory.ReferenceKindPurchase,
		ReferenceID:   uuid.New(),
		ActorID:       testutil.ActorID(),
	})
	require.NoError(t, err)
	return resp
}

func TestStockService_CreditAveragesCost(t *testing.T) {
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "AVG-1", "0")

	first := credit(t, stack, productID, "100", "10")
	assert.True(t, dec("10").Equal(first.Inventory.AverageCost))
	assert.True(t, dec("100").Equal(first.Movement.BalanceAfter))

	second := credit(t, stack, productID, "50", "13")
	assert.True(t, dec("150").Equal(second.Inventory.Quantity))
	assert.True(t, dec("11").Equal(second.Inventory.AverageCost))
	assert.True(t, dec("1650").Equal(second.Inventory.StockValue))
	assert.Equal(t, 2, stack.Events.Count(inventory.EventTypeStockCredited))
}

func TestStockService_ReserveRelease(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "RES-1", "0")
	credit(t, stack, productID, "10", "5")

	record, err := stack.Services.Stock.Reserve(ctx, appinventory.ReserveStockRequest{ProductID: productID, Quantity: dec("4")})
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(record.ReservedQuantity))
	assert.True(t, dec("6").Equal(record.Available))

	_, err = stack.Services.Stock.Reserve(ctx, appinventory.ReserveStockRequest{ProductID: productID, Quantity: dec("7")})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// release more than held gives back only what is reserved
	record, err = stack.Services.Stock.Release(ctx, appinventory.ReleaseStockRequest{ProductID: productID, Quantity: dec("9")})
	require.NoError(t, err)
	assert.True(t, record.ReservedQuantity.IsZero())
	assert.True(t, dec("10").Equal(record.Quantity))

	movements, total, err := stack.Services.Stock.ListMovements(ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "reservations write no movements")
	assert.Len(t, movements, 1)
}

func TestStockService_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	missing := uuid.New()

	_, err := stack.Services.Stock.Release(ctx, appinventory.ReleaseStockRequest{ProductID: missing, Quantity: dec("3")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = stack.Services.Stock.Reserve(ctx, appinventory.ReserveStockRequest{ProductID: missing, Quantity: dec("1")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = stack.Services.Stock.GetInventory(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound, "no record is created for an unknown product")
}

func TestStockService_ConcurrentReservesNeverOversell(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "RACE-1", "0")
	credit(t, stack, productID, "5", "1")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		failures  []error
	)
	for _, qty := range []string{"3", "4"} {
		wg.Add(1)
		go func(qty string) {
			defer wg.Done()
			_, err := stack.Services.Stock.Reserve(ctx, appinventory.ReserveStockRequest{ProductID: productID, Quantity: dec(qty)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded = append(succeeded, qty)
		}(qty)
	}
	wg.Wait()

	require.Len(t, succeeded, 1)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], shared.ErrInsufficientStock)

	record, err := stack.Services.Stock.GetInventory(ctx, productID)
	require.NoError(t, err)
	assert.True(t, dec(succeeded[0]).Equal(record.ReservedQuantity))
	assert.False(t, record.Available.IsNegative())
}

func TestStockService_Deduct(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "DED-1", "0")
	credit(t, stack, productID, "10", "4")

	t.Run("requires a reference", func(t *testing.T) {
		_, err := stack.Services.Stock.Deduct(ctx, appinventory.DeductStockRequest{
			ProductID: productID,
			Quantity:  dec("1"),
			Type:      inventory.MovementTypeDamage,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("cannot take reserved stock", func(t *testing.T) {
		_, err := stack.Services.Stock.Reserve(ctx, appinventory.ReserveStockRequest{ProductID: productID, Quantity: dec("8")})
		require.NoError(t, err)

		_, err = stack.Services.Stock.Deduct(ctx, appinventory.DeductStockRequest{
			ProductID:     productID,
			Quantity:      dec("3"),
			Type:          inventory.MovementTypeDamage,
			ReferenceKind: inventory.ReferenceKindAdjustment,
			ReferenceID:   uuid.New(),
			ActorID:       testutil.ActorID(),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		_, err = stack.Services.Stock.Release(ctx, appinventory.ReleaseStockRequest{ProductID: productID, Quantity: dec("8")})
		require.NoError(t, err)
	})

	t.Run("writes a movement at average cost", func(t *testing.T) {
		resp, err := stack.Services.Stock.Deduct(ctx, appinventory.DeductStockRequest{
			ProductID:     productID,
			Quantity:      dec("3"),
			Type:          inventory.MovementTypeDamage,
			ReferenceKind: inventory.ReferenceKindAdjustment,
			ReferenceID:   uuid.New(),
			Notes:         "crushed pallet",
			ActorID:       testutil.ActorID(),
		})
		require.NoError(t, err)
		assert.True(t, dec("7").Equal(resp.Inventory.Quantity))
		assert.True(t, dec("4").Equal(resp.Movement.UnitCost))
		assert.True(t, dec("4").Equal(resp.CostBefore))
		assert.Equal(t, inventory.MovementTypeDamage, resp.Movement.Type)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "ADJ-1", "5")
	credit(t, stack, productID, "10", "6")

	_, err := stack.Services.Stock.Adjust(ctx, appinventory.AdjustStockRequest{ProductID: productID, Delta: decimal.Zero, Reason: "noop"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	up, err := stack.Services.Stock.Adjust(ctx, appinventory.AdjustStockRequest{
		ProductID: productID, Delta: dec("2"), Reason: "found in back room", ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(up.Inventory.Quantity))
	assert.True(t, dec("6").Equal(up.Inventory.AverageCost), "positive adjustments keep the average")
	assert.Equal(t, inventory.MovementTypeAdjustment, up.Movement.Type)

	down, err := stack.Services.Stock.Adjust(ctx, appinventory.AdjustStockRequest{
		ProductID: productID, Delta: dec("-8"), Reason: "count correction", ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(down.Inventory.Quantity))

	alerts, _, err := stack.Services.Stock.ListAlerts(ctx, appinventory.AlertListFilter{ProductID: &productID, UnacknowledgedOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, inventory.AlertTypeLowStock, alerts[0].AlertType)
}

func TestStockService_Alerts(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t, testutil.WithAlertsOnCredit())
	productID := newProduct(t, stack, "ALR-1", "10")

	alert, err := stack.Services.Stock.EvaluateAlerts(ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, inventory.AlertTypeOutOfStock, alert.AlertType)

	credit(t, stack, productID, "8", "1")
	alerts, total, err := stack.Services.Stock.ListAlerts(ctx, appinventory.AlertListFilter{ProductID: &productID, UnacknowledgedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "re-evaluation replaces the open alert")
	assert.Equal(t, inventory.AlertTypeLowStock, alerts[0].AlertType)

	acked, err := stack.Services.Stock.AcknowledgeAlert(ctx, alerts[0].ID, testutil.ActorID())
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)

	_, err = stack.Services.Stock.AcknowledgeAlert(ctx, alerts[0].ID, testutil.ActorID())
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	credit(t, stack, productID, "20", "1")
	alert, err = stack.Services.Stock.EvaluateAlerts(ctx, productID)
	require.NoError(t, err)
	assert.Nil(t, alert)

	all, _, err := stack.Services.Stock.ListAlerts(ctx, appinventory.AlertListFilter{ProductID: &productID})
	require.NoError(t, err)
	assert.Len(t, all, 1, "acknowledged alerts survive re-evaluation")
	assert.GreaterOrEqual(t, stack.Events.Count(inventory.EventTypeStockAlertRaised), 2)
}

func TestStockService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	productID := newProduct(t, stack, "AVL-1", "0")
	credit(t, stack, productID, "5", "2")

	ok, available, err := stack.Services.Stock.CheckAvailability(ctx, productID, dec("5"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, dec("5").Equal(available))

	ok, _, err = stack.Services.Stock.CheckAvailability(ctx, productID, dec("5.5"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = stack.Services.Stock.CheckAvailability(ctx, uuid.New(), dec("1"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
