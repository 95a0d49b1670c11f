package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/erp/ledger/internal/application"
	"github.com/erp/ledger/internal/application/catalog"
	appfinance "github.com/erp/ledger/internal/application/finance"
	appinventory "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/application/partner"
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledgerFixture struct {
	t        *testing.T
	ctx      context.Context
	db       *TestDB
	services *application.Services
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	db := NewTestDB(t)
	clock := testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return &ledgerFixture{t: t, ctx: context.Background(), db: db, services: db.Services(clock, nil)}
}

func (f *ledgerFixture) fund(amount string) {
	f.t.Helper()
	_, err := f.services.Budget.RecordEntry(f.ctx, appfinance.RecordBudgetEntryRequest{
		Type:    finance.BudgetEntryInitial,
		Amount:  dec(amount),
		ActorID: testutil.ActorID(),
	})
	require.NoError(f.t, err)
}

func (f *ledgerFixture) product(code string) uuid.UUID {
	f.t.Helper()
	product, err := f.services.Products.Create(f.ctx, catalog.CreateProductRequest{
		Code:              code,
		Name:              "Product " + code,
		Unit:              "bag",
		BuyingPrice:       dec("10"),
		SellingPrice:      dec("25"),
		LowStockThreshold: dec("10"),
		ActorID:           testutil.ActorID(),
	})
	require.NoError(f.t, err)
	return product.ID
}

func (f *ledgerFixture) purchase(productID uuid.UUID, qty, price string) (*apptrade.PurchaseResponse, uuid.UUID) {
	f.t.Helper()
	supplier, err := f.services.Suppliers.Create(f.ctx, partner.CreateSupplierRequest{Name: "Supplier", ActorID: testutil.ActorID()})
	require.NoError(f.t, err)
	purchase, err := f.services.Purchases.Create(f.ctx, apptrade.CreatePurchaseRequest{
		SupplierID:   supplier.ID,
		ProductID:    productID,
		Quantity:     dec(qty),
		PricePerUnit: dec(price),
		ActorID:      testutil.ActorID(),
	})
	require.NoError(f.t, err)
	return purchase, supplier.ID
}

func (f *ledgerFixture) customer() uuid.UUID {
	f.t.Helper()
	customer, err := f.services.Customers.Create(f.ctx, partner.CreateCustomerRequest{Name: "Customer", ActorID: testutil.ActorID()})
	require.NoError(f.t, err)
	return customer.ID
}

func TestLedger_PurchaseToDelivery(t *testing.T) {
	f := newLedgerFixture(t)
	f.fund("5000")
	productID := f.product("RICE-25")

	purchase, supplierID := f.purchase(productID, "100", "10")
	_, err := f.services.Purchases.Complete(f.ctx, purchase.ID, testutil.ActorID())
	require.NoError(t, err)

	budget, err := f.services.Budget.CurrentBudget(f.ctx)
	require.NoError(t, err)
	assert.True(t, dec("4000").Equal(budget))

	supplier, err := f.services.Suppliers.GetByID(f.ctx, supplierID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(supplier.TotalSupplied))

	customerID := f.customer()
	order, err := f.services.Orders.Create(f.ctx, apptrade.CreateOrderRequest{
		CustomerID:      customerID,
		FulfillmentType: trade.FulfillmentPickup,
		Items:           []apptrade.OrderItemInput{{ProductID: productID, Quantity: dec("30")}},
		ActorID:         testutil.ActorID(),
	})
	require.NoError(t, err)
	assert.True(t, dec("750").Equal(order.TotalAmount))

	record, err := f.services.Stock.GetInventory(f.ctx, productID)
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(record.ReservedQuantity))
	assert.True(t, dec("70").Equal(record.Available))

	confirmed, err := f.services.Orders.Transition(f.ctx, order.ID, apptrade.TransitionOrderRequest{
		Status: trade.OrderStatusConfirmed, ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	require.NotNil(t, confirmed.Items[0].CostPrice)
	assert.True(t, dec("10").Equal(*confirmed.Items[0].CostPrice))

	_, err = f.services.Payments.Record(f.ctx, appfinance.RecordPaymentRequest{
		OrderID: order.ID, Amount: dec("750"), Method: finance.PaymentMethodBankTransfer, ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	delivered, err := f.services.Orders.Transition(f.ctx, order.ID, apptrade.TransitionOrderRequest{
		Status: trade.OrderStatusDelivered, ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatePaid), delivered.PaymentStatus)

	customer, err := f.services.Customers.GetByID(f.ctx, customerID)
	require.NoError(t, err)
	assert.True(t, dec("750").Equal(customer.LifetimePurchases))

	record, err = f.services.Stock.GetInventory(f.ctx, productID)
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(record.Quantity))
	assert.True(t, record.ReservedQuantity.IsZero())

	movements, total, err := f.services.Stock.ListMovements(f.ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, m := range movements {
		if m.Type == inventory.MovementTypeSale {
			assert.True(t, dec("30").Equal(m.Quantity))
			assert.True(t, dec("70").Equal(m.BalanceAfter))
		}
	}
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	f := newLedgerFixture(t)
	f.fund("1000")
	productID := f.product("OIL-5")
	purchase, _ := f.purchase(productID, "50", "4")
	_, err := f.services.Purchases.Complete(f.ctx, purchase.ID, testutil.ActorID())
	require.NoError(t, err)

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved = decimal.Zero
		refused  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.services.Stock.Reserve(f.ctx, appinventory.ReserveStockRequest{ProductID: productID, Quantity: dec("3")})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, shared.ErrInsufficientStock)
				refused++
				return
			}
			reserved = reserved.Add(dec("3"))
		}()
	}
	wg.Wait()

	assert.True(t, dec("48").Equal(reserved), "sixteen reservations of three fit in fifty")
	assert.Equal(t, 4, refused)

	record, err := f.services.Stock.GetInventory(f.ctx, productID)
	require.NoError(t, err)
	assert.True(t, dec("48").Equal(record.ReservedQuantity))
	assert.True(t, dec("2").Equal(record.Available))
}

func TestLedger_ConcurrentPurchasesRespectBudget(t *testing.T) {
	f := newLedgerFixture(t)
	f.fund("1000")
	productID := f.product("BEANS-10")

	const purchases = 8
	ids := make([]uuid.UUID, purchases)
	for i := range ids {
		purchase, _ := f.purchase(productID, "10", "30")
		ids[i] = purchase.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.services.Purchases.Complete(f.ctx, id, testutil.ActorID())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, shared.ErrInsufficientBudget)
				return
			}
			completed++
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 3, completed, "each purchase costs 300 against a budget of 1000")

	budget, err := f.services.Budget.CurrentBudget(f.ctx)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(budget))

	record, err := f.services.Stock.GetInventory(f.ctx, productID)
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(record.Quantity))
}

func TestLedger_HistoryOutlivesProduct(t *testing.T) {
	f := newLedgerFixture(t)
	productID := f.product("SALT-1")

	_, err := f.services.Stock.Adjust(f.ctx, appinventory.AdjustStockRequest{
		ProductID: productID, Delta: dec("5"), Reason: "opening count", ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)
	_, err = f.services.Stock.Adjust(f.ctx, appinventory.AdjustStockRequest{
		ProductID: productID, Delta: dec("-5"), Reason: "spoiled", ActorID: testutil.ActorID(),
	})
	require.NoError(t, err)

	require.NoError(t, f.services.Products.Delete(f.ctx, productID, testutil.ActorID()))

	_, total, err := f.services.Stock.ListMovements(f.ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	alerts, _, err := f.services.Stock.ListAlerts(f.ctx, appinventory.AlertListFilter{ProductID: &productID})
	require.NoError(t, err)
	assert.Empty(t, alerts, "alerts go with the product")
}

func TestMigrations_DownAndUp(t *testing.T) {
	db := NewTestDB(t)

	m := NewMigrator(t, db.Config)
	defer func() { _ = m.Close() }()

	status, err := m.Status()
	require.NoError(t, err)
	assert.False(t, status.Dirty)
	assert.Empty(t, status.Pending)
	require.NotEmpty(t, status.Available)
	latest := status.Available[len(status.Available)-1].Version
	assert.Equal(t, latest, status.Version)

	require.NoError(t, m.Down())
	assert.False(t, db.DB.Migrator().HasTable("inventory_records"))

	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)
	for _, table := range []string{"products", "inventory_records", "stock_movements", "stock_alerts", "budget_entries", "purchases", "orders", "order_items", "payments", "suppliers", "customers"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "table %s", table)
	}
}
