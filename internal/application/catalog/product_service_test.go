package catalog_test

import (
	"context"
	"testing"

	appcatalog "github.com/erp/ledger/internal/application/catalog"
	appinventory "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
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

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func createProduct(t *testing.T, stack *testutil.Stack, code, name string) *appcatalog.ProductResponse {
	t.Helper()
	product, err := stack.Services.Products.Create(context.Background(), appcatalog.CreateProductRequest{
		Code:         code,
		Name:         name,
		Unit:         "kg",
		BuyingPrice:  dec("4"),
		SellingPrice: dec("5"),
		ActorID:      testutil.ActorID(),
	})
	require.NoError(t, err)
	return product
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)

	product, err := stack.Services.Products.Create(ctx, appcatalog.CreateProductRequest{
		Code:              "tea-250",
		Name:              "Loose Tea",
		Description:       "250g pouch",
		Unit:              "pouch",
		BuyingPrice:       dec("3.20"),
		SellingPrice:      dec("4.00"),
		LowStockThreshold: dec("12"),
		ActorID:           testutil.ActorID(),
	})
	require.NoError(t, err)
	assert.Equal(t, "TEA-250", product.Code)
	assert.Equal(t, "250g pouch", product.Description)
	assert.Equal(t, string(catalog.ProductStatusActive), product.Status)
	assert.True(t, dec("25").Equal(product.ProfitMargin))
	assert.Equal(t, 1, stack.Events.Count(catalog.EventTypeProductCreated))

	record, err := stack.Services.Stock.GetInventory(ctx, product.ID)
	require.NoError(t, err, "creating a product opens its inventory record")
	assert.True(t, record.Quantity.IsZero())

	byCode, err := stack.Services.Products.GetByCode(ctx, "tea-250")
	require.NoError(t, err)
	assert.Equal(t, product.ID, byCode.ID)

	t.Run("duplicate code", func(t *testing.T) {
		_, err := stack.Services.Products.Create(ctx, appcatalog.CreateProductRequest{
			Code: "TEA-250", Name: "Other Tea", Unit: "pouch",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := stack.Services.Products.Create(ctx, appcatalog.CreateProductRequest{
			Code: "NEG-1", Name: "Broken", Unit: "pcs", SellingPrice: dec("-1"),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := stack.Services.Products.Create(ctx, appcatalog.CreateProductRequest{Code: "NONAME", Unit: "pcs"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	product := createProduct(t, stack, "SOAP-1", "Bar Soap")
	priceEvents := stack.Events.Count(catalog.EventTypeProductPriceChanged)

	name := "Laundry Soap"
	updated, err := stack.Services.Products.Update(ctx, product.ID, appcatalog.UpdateProductRequest{
		Name:         &name,
		SellingPrice: decPtr("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Laundry Soap", updated.Name)
	assert.Equal(t, "kg", updated.Unit, "unset fields are kept")
	assert.True(t, dec("4").Equal(updated.BuyingPrice))
	assert.True(t, dec("6").Equal(updated.SellingPrice))
	assert.Equal(t, priceEvents+1, stack.Events.Count(catalog.EventTypeProductPriceChanged))

	t.Run("threshold change evaluates alerts", func(t *testing.T) {
		_, err := stack.Services.Products.Update(ctx, product.ID, appcatalog.UpdateProductRequest{LowStockThreshold: decPtr("3")})
		require.NoError(t, err)

		alerts, _, err := stack.Services.Stock.ListAlerts(ctx, appinventory.AlertListFilter{ProductID: &product.ID, UnacknowledgedOnly: true})
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, inventory.AlertTypeOutOfStock, alerts[0].AlertType)
	})

	t.Run("deactivate", func(t *testing.T) {
		inactive := false
		deactivated, err := stack.Services.Products.Update(ctx, product.ID, appcatalog.UpdateProductRequest{Active: &inactive})
		require.NoError(t, err)
		assert.Equal(t, string(catalog.ProductStatusInactive), deactivated.Status)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := stack.Services.Products.Update(ctx, uuid.New(), appcatalog.UpdateProductRequest{Name: &name})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	product := createProduct(t, stack, "CAN-1", "Canned Fish")

	_, err := stack.Services.Stock.Credit(ctx, appinventory.CreditStockRequest{
		ProductID:     product.ID,
		Quantity:      dec("2"),
		UnitCost:      dec("4"),
		Type:          inventory.MovementTypePurchase,
		ReferenceKind: inventory.ReferenceKindPurchase,
		ReferenceID:   uuid.New(),
		ActorID:       testutil.ActorID(),
	})
	require.NoError(t, err)

	err = stack.Services.Products.Delete(ctx, product.ID, testutil.ActorID())
	assert.ErrorIs(t, err, shared.ErrInvalidState, "stock on hand blocks deletion")

	_, err = stack.Services.Stock.Adjust(ctx, appinventory.AdjustStockRequest{
		ProductID: product.ID,
		Delta:     dec("-2"),
		Reason:    "expired",
		ActorID:   testutil.ActorID(),
	})
	require.NoError(t, err)

	require.NoError(t, stack.Services.Products.Delete(ctx, product.ID, testutil.ActorID()))
	_, err = stack.Services.Products.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	movements, total, err := stack.Services.Stock.ListMovements(ctx, product.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "movement history outlives the product")
	assert.Len(t, movements, 2)
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	createProduct(t, stack, "MILK-1", "Fresh Milk")
	createProduct(t, stack, "MILK-2", "Powdered Milk")
	bread := createProduct(t, stack, "BREAD-1", "White Bread")

	inactive := false
	_, err := stack.Services.Products.Update(ctx, bread.ID, appcatalog.UpdateProductRequest{Active: &inactive})
	require.NoError(t, err)

	products, total, err := stack.Services.Products.List(ctx, appcatalog.ProductListFilter{Search: "milk"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	products, total, err = stack.Services.Products.List(ctx, appcatalog.ProductListFilter{Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "BREAD-1", products[0].Code)

	products, _, err = stack.Services.Products.List(ctx, appcatalog.ProductListFilter{PageSize: 2, OrderBy: "code", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "BREAD-1", products[0].Code)
}
