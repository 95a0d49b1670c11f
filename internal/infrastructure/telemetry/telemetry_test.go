package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/application/catalog"
	"github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{Enabled: false, ServiceName: "ledger"}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("ledger"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestRegisterDBTracing(t *testing.T) {
	stack := testutil.NewStack(t)

	require.NoError(t, telemetry.RegisterDBTracing(stack.DB.DB, telemetry.DBTracingConfig{}, zap.NewNop()))
	require.NoError(t, telemetry.RegisterDBTracing(stack.DB.DB, telemetry.DBTracingConfig{
		Enabled:  true,
		DBSystem: "sqlite",
	}, zap.NewNop()))

	// statements still run with the plugin installed
	_, _, err := stack.Services.Products.List(context.Background(), catalog.ProductListFilter{})
	assert.NoError(t, err)
}

func TestGormInventoryMetricsProvider(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)
	provider := telemetry.NewGormInventoryMetricsProvider(stack.DB.DB)

	reserved, err := provider.ReservedQuantity(ctx)
	require.NoError(t, err)
	assert.True(t, reserved.IsZero(), "empty inventory")

	create := func(code string) *catalog.ProductResponse {
		product, err := stack.Services.Products.Create(ctx, catalog.CreateProductRequest{
			Code:              code,
			Name:              "Product " + code,
			Unit:              "pcs",
			LowStockThreshold: decimal.NewFromInt(5),
			ActorID:           testutil.ActorID(),
		})
		require.NoError(t, err)
		return product
	}
	a, b := create("GAUGE-1"), create("GAUGE-2")
	_, err = stack.Services.Stock.Adjust(ctx, inventory.AdjustStockRequest{
		ProductID: a.ID, Delta: decimal.NewFromInt(4), Reason: "count", ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	_, err = stack.Services.Stock.Reserve(ctx, inventory.ReserveStockRequest{ProductID: a.ID, Quantity: decimal.RequireFromString("1.5")})
	require.NoError(t, err)
	_, err = stack.Services.Stock.EvaluateAlerts(ctx, b.ID)
	require.NoError(t, err)

	reserved, err = provider.ReservedQuantity(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.5").Equal(reserved), "got %s", reserved)

	counts, err := provider.OpenAlertCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["low_stock"])
	assert.Equal(t, int64(1), counts["out_of_stock"])
}
