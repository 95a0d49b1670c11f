package uow

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/partner"
	"github.com/erp/ledger/internal/domain/trade"
)

// TransactionScope runs a unit of work. Every repository handed to fn shares
// one database transaction, committed if fn returns nil and rolled back
// otherwise. Row locks taken through the repositories are held until then.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every ledger repository inside a unit of work
type Repositories interface {
	Products() catalog.ProductRepository
	Inventory() inventory.InventoryRecordRepository
	Movements() inventory.MovementRepository
	Alerts() inventory.StockAlertRepository
	Budget() finance.BudgetRepository
	Payments() finance.PaymentRepository
	Purchases() trade.PurchaseRepository
	Orders() trade.OrderRepository
	Suppliers() partner.SupplierRepository
	Customers() partner.CustomerRepository
}
