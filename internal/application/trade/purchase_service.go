package trade

import (
	"context"

	appfinance "github.com/erp/ledger/internal/application/finance"
	appinventory "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseServiceConfig tunes purchase completion
type PurchaseServiceConfig struct {
	// EvaluateAlertsOnCredit re-runs the alert generator after goods are received
	EvaluateAlertsOnCredit bool
}

// PurchaseService handles purchase-related business operations
type PurchaseService struct {
	txScope        uow.TransactionScope
	ledger         *appinventory.Ledger
	alerts         *appinventory.AlertGenerator
	budget         *appfinance.BudgetLedger
	clock          shared.Clock
	config         PurchaseServiceConfig
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	txScope uow.TransactionScope,
	ledger *appinventory.Ledger,
	alerts *appinventory.AlertGenerator,
	budget *appfinance.BudgetLedger,
	clock shared.Clock,
	config PurchaseServiceConfig,
	logger *zap.Logger,
) *PurchaseService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		txScope: txScope,
		ledger:  ledger,
		alerts:  alerts,
		budget:  budget,
		clock:   clock,
		config:  config,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a pending purchase
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	costs := trade.PurchaseCosts{Packaging: req.PackagingCost, Transport: req.TransportCost, Other: req.OtherCost}
	purchase, err := trade.NewPurchase(req.SupplierID, req.ProductID, req.Quantity, req.PricePerUnit, costs, req.ActorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !req.PurchaseDate.IsZero() {
		purchase.PurchaseDate = req.PurchaseDate
	}
	purchase.Notes = req.Notes

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Suppliers().FindByID(ctx, req.SupplierID); err != nil {
			return err
		}
		product, err := repos.Products().FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if err := product.EnsureTradable(); err != nil {
			return err
		}
		return repos.Purchases().Save(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("grand_total", purchase.GrandTotal.String()),
		zap.String("actor_id", req.ActorID.String()))
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// Update replaces the terms of a pending purchase
func (s *PurchaseService) Update(ctx context.Context, purchaseID uuid.UUID, req UpdatePurchaseRequest) (*PurchaseResponse, error) {
	var response PurchaseResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		costs := trade.PurchaseCosts{Packaging: req.PackagingCost, Transport: req.TransportCost, Other: req.OtherCost}
		if err := purchase.Update(req.Quantity, req.PricePerUnit, costs, req.Notes, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.Purchases().Save(ctx, purchase); err != nil {
			return err
		}
		response = ToPurchaseResponse(purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// SetMetrics counts completed purchases on metrics
func (s *PurchaseService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// Complete receives a pending purchase. In one transaction it checks and
// debits the budget by the grand total, credits inventory at the price per
// unit and adds the grand total to the supplier's running total. Any
// failure, including ErrInsufficientBudget, leaves everything unchanged.
func (s *PurchaseService) Complete(ctx context.Context, purchaseID, actorID uuid.UUID) (*PurchaseResponse, error) {
	var events uow.EventCollector
	var response PurchaseResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := purchase.Complete(actorID, now); err != nil {
			return err
		}

		product, err := repos.Products().FindByID(ctx, purchase.ProductID)
		if err != nil {
			return err
		}
		if err := product.EnsureTradable(); err != nil {
			return err
		}

		if _, err := s.budget.Debit(ctx, repos, purchase.GrandTotal,
			"Purchase of "+purchase.Quantity.String()+" "+product.Unit+" "+product.Code,
			string(inventory.ReferenceKindPurchase), purchase.ID, actorID, &events); err != nil {
			return err
		}

		unitCost := purchase.PricePerUnit
		if _, err := s.ledger.Credit(ctx, repos, purchase.ProductID, inventory.StockChange{
			Quantity:  purchase.Quantity,
			Type:      inventory.MovementTypePurchase,
			Reference: inventory.PurchaseRef(purchase.ID),
			ActorID:   actorID,
			UnitCost:  &unitCost,
		}, &events); err != nil {
			return err
		}
		if s.config.EvaluateAlertsOnCredit {
			if _, err := s.alerts.Evaluate(ctx, repos, purchase.ProductID, &events); err != nil {
				return err
			}
		}

		supplier, err := repos.Suppliers().FindByIDForUpdate(ctx, purchase.SupplierID)
		if err != nil {
			return err
		}
		if err := supplier.RecordSupply(purchase.GrandTotal, now); err != nil {
			return err
		}
		if err := repos.Suppliers().Save(ctx, supplier); err != nil {
			return err
		}

		if err := repos.Purchases().Save(ctx, purchase); err != nil {
			return err
		}
		events.Collect(purchase)
		response = ToPurchaseResponse(purchase)
		return nil
	})
	if err != nil {
		if _, ok := shared.IsDomainError(err); ok {
			s.logger.Info("purchase completion rejected",
				zap.String("purchase_id", purchaseID.String()),
				zap.Error(err))
		} else {
			s.logger.Error("purchase completion failed",
				zap.String("purchase_id", purchaseID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPurchaseCompleted(ctx)
	}
	s.logger.Info("purchase completed",
		zap.String("purchase_id", purchaseID.String()),
		zap.String("grand_total", response.GrandTotal.String()),
		zap.String("actor_id", actorID.String()))
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Cancel abandons a pending purchase
func (s *PurchaseService) Cancel(ctx context.Context, purchaseID uuid.UUID, reason string, actorID uuid.UUID) (*PurchaseResponse, error) {
	var response PurchaseResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := purchase.Cancel(reason, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.Purchases().Save(ctx, purchase); err != nil {
			return err
		}
		response = ToPurchaseResponse(purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase cancelled",
		zap.String("purchase_id", purchaseID.String()),
		zap.String("reason", reason),
		zap.String("actor_id", actorID.String()))
	return &response, nil
}

// Delete removes a purchase that was never completed
func (s *PurchaseService) Delete(ctx context.Context, purchaseID, actorID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := purchase.CanDelete(); err != nil {
			return err
		}
		return repos.Purchases().Delete(ctx, purchaseID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("purchase deleted",
		zap.String("purchase_id", purchaseID.String()),
		zap.String("actor_id", actorID.String()))
	return nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	var response PurchaseResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		purchase, err := repos.Purchases().FindByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		response = ToPurchaseResponse(purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves purchases with filtering and pagination
func (s *PurchaseService) List(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	domainFilter := trade.PurchaseFilter{
		Filter:     shared.DefaultFilter(),
		Status:     trade.PurchaseStatus(filter.Status),
		SupplierID: filter.SupplierID,
		ProductID:  filter.ProductID,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if domainFilter.Status != "" && !domainFilter.Status.IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "Invalid purchase status")
	}

	var (
		purchases []trade.Purchase
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		purchases, total, err = repos.Purchases().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		responses[i] = ToPurchaseResponse(&purchases[i])
	}
	return responses, total, nil
}
