// Package application wires the ledger use-case services around one
// transaction scope.
package application

import (
	"github.com/erp/ledger/internal/application/catalog"
	"github.com/erp/ledger/internal/application/finance"
	"github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/application/partner"
	"github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Config carries the behaviour switches services read
type Config struct {
	EvaluateAlertsOnCredit bool
	// Metrics, when set, receives order, payment, purchase and alert counts
	Metrics *telemetry.LedgerMetrics
}

// Services holds every use-case service of the ledger
type Services struct {
	Products  *catalog.ProductService
	Stock     *inventory.StockService
	Budget    *finance.BudgetService
	Payments  *finance.PaymentService
	Suppliers *partner.SupplierService
	Customers *partner.CustomerService
	Purchases *trade.PurchaseService
	Orders    *trade.OrderService
}

// NewServices builds the services. A nil clock means the system clock.
func NewServices(txScope uow.TransactionScope, clock shared.Clock, cfg Config, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}

	ledger := inventory.NewLedger(clock)
	alerts := inventory.NewAlertGenerator(clock)
	budget := finance.NewBudgetLedger(clock)

	services := &Services{
		Products: catalog.NewProductService(txScope, ledger, alerts, clock, logger.Named("products")),
		Stock: inventory.NewStockService(txScope, ledger, alerts, clock,
			inventory.StockServiceConfig{EvaluateAlertsOnCredit: cfg.EvaluateAlertsOnCredit},
			logger.Named("stock")),
		Budget:    finance.NewBudgetService(txScope, budget, clock, logger.Named("budget")),
		Payments:  finance.NewPaymentService(txScope, clock, logger.Named("payments")),
		Suppliers: partner.NewSupplierService(txScope, clock, logger.Named("suppliers")),
		Customers: partner.NewCustomerService(txScope, clock, logger.Named("customers")),
		Purchases: trade.NewPurchaseService(txScope, ledger, alerts, budget, clock,
			trade.PurchaseServiceConfig{EvaluateAlertsOnCredit: cfg.EvaluateAlertsOnCredit},
			logger.Named("purchases")),
		Orders: trade.NewOrderService(txScope, ledger, alerts, clock, logger.Named("orders")),
	}
	if cfg.Metrics != nil {
		alerts.SetMetrics(cfg.Metrics)
		services.Orders.SetMetrics(cfg.Metrics)
		services.Payments.SetMetrics(cfg.Metrics)
		services.Purchases.SetMetrics(cfg.Metrics)
	}
	return services
}

// SetEventPublisher hands publisher to every service that raises events
func (s *Services) SetEventPublisher(publisher shared.EventPublisher) {
	s.Products.SetEventPublisher(publisher)
	s.Stock.SetEventPublisher(publisher)
	s.Budget.SetEventPublisher(publisher)
	s.Payments.SetEventPublisher(publisher)
	s.Purchases.SetEventPublisher(publisher)
	s.Orders.SetEventPublisher(publisher)
}
