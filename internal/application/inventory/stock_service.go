package inventory

import (
	"context"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockServiceConfig tunes stock behaviour
type StockServiceConfig struct {
	// EvaluateAlertsOnCredit re-runs the alert generator after every credit,
	// which clears low stock alerts once goods arrive
	EvaluateAlertsOnCredit bool
}

// StockService exposes the inventory ledger. Each call is one unit of work.
type StockService struct {
	txScope        uow.TransactionScope
	ledger         *Ledger
	alerts         *AlertGenerator
	clock          shared.Clock
	config         StockServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(txScope uow.TransactionScope, ledger *Ledger, alerts *AlertGenerator, clock shared.Clock, config StockServiceConfig, logger *zap.Logger) *StockService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		txScope: txScope,
		ledger:  ledger,
		alerts:  alerts,
		clock:   clock,
		config:  config,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetInventory returns a product's stock position
func (s *StockService) GetInventory(ctx context.Context, productID uuid.UUID) (*InventoryResponse, error) {
	var response InventoryResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		record, err := repos.Inventory().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}
		response = ToInventoryResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Reserve holds stock for a pending order
func (s *StockService) Reserve(ctx context.Context, req ReserveStockRequest) (*InventoryResponse, error) {
	var events uow.EventCollector
	var response InventoryResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		record, err := s.ledger.Reserve(ctx, repos, req.ProductID, req.Quantity, &events)
		if err != nil {
			return err
		}
		response = ToInventoryResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Release gives back held stock; over-release clamps at zero
func (s *StockService) Release(ctx context.Context, req ReleaseStockRequest) (*InventoryResponse, error) {
	var events uow.EventCollector
	var response InventoryResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		if _, err := s.ledger.Release(ctx, repos, req.ProductID, req.Quantity, &events); err != nil {
			return err
		}
		record, err := repos.Inventory().FindByProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		response = ToInventoryResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Deduct removes stock, writes the ledger entry and re-evaluates alerts
func (s *StockService) Deduct(ctx context.Context, req DeductStockRequest) (*DeductStockResponse, error) {
	ref := inventory.Reference{Kind: req.ReferenceKind, ID: req.ReferenceID}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var events uow.EventCollector
	var response DeductStockResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		result, err := s.ledger.Deduct(ctx, repos, req.ProductID, inventory.StockChange{
			Quantity:  req.Quantity,
			Type:      req.Type,
			Reference: ref,
			ActorID:   req.ActorID,
			UnitCost:  req.UnitCost,
			Notes:     req.Notes,
		}, &events)
		if err != nil {
			return err
		}
		if _, err := s.alerts.Evaluate(ctx, repos, req.ProductID, &events); err != nil {
			return err
		}
		response = DeductStockResponse{
			Inventory:  ToInventoryResponse(result.Record),
			Movement:   ToMovementResponse(result.Movement),
			CostBefore: result.CostBefore,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Credit adds stock at a unit cost and writes the ledger entry
func (s *StockService) Credit(ctx context.Context, req CreditStockRequest) (*StockChangeResponse, error) {
	ref := inventory.Reference{Kind: req.ReferenceKind, ID: req.ReferenceID}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var events uow.EventCollector
	var response StockChangeResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		unitCost := req.UnitCost
		result, err := s.ledger.Credit(ctx, repos, req.ProductID, inventory.StockChange{
			Quantity:  req.Quantity,
			Type:      req.Type,
			Reference: ref,
			ActorID:   req.ActorID,
			UnitCost:  &unitCost,
			Notes:     req.Notes,
		}, &events)
		if err != nil {
			return err
		}
		if s.config.EvaluateAlertsOnCredit {
			if _, err := s.alerts.Evaluate(ctx, repos, req.ProductID, &events); err != nil {
				return err
			}
		}
		response = StockChangeResponse{
			Inventory: ToInventoryResponse(result.Record),
			Movement:  ToMovementResponse(result.Movement),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Adjust applies a manual correction and always re-evaluates alerts
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) (*StockChangeResponse, error) {
	if req.Delta.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Adjustment cannot be zero")
	}
	movementType := req.Type
	if movementType == "" {
		movementType = inventory.MovementTypeAdjustment
	}
	ref := inventory.AdjustmentRef(uuid.New())

	var events uow.EventCollector
	var response StockChangeResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}

		change := inventory.StockChange{
			Quantity:  req.Delta.Abs(),
			Type:      movementType,
			Reference: ref,
			ActorID:   req.ActorID,
			Notes:     req.Reason,
		}

		var record *inventory.InventoryRecord
		var movement *inventory.Movement
		if req.Delta.IsNegative() {
			result, err := s.ledger.Deduct(ctx, repos, req.ProductID, change, &events)
			if err != nil {
				return err
			}
			record, movement = result.Record, result.Movement
		} else {
			current, err := s.ledger.Lock(ctx, repos, req.ProductID)
			if err != nil {
				return err
			}
			cost := current.AverageCost
			change.UnitCost = &cost
			result, err := s.ledger.Credit(ctx, repos, req.ProductID, change, &events)
			if err != nil {
				return err
			}
			record, movement = result.Record, result.Movement
		}

		if _, err := s.alerts.Evaluate(ctx, repos, req.ProductID, &events); err != nil {
			return err
		}
		response = StockChangeResponse{
			Inventory: ToInventoryResponse(record),
			Movement:  ToMovementResponse(movement),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", req.ProductID.String()),
		zap.String("delta", req.Delta.String()),
		zap.String("type", string(movementType)),
		zap.String("actor_id", req.ActorID.String()))
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// ListMovements lists a product's ledger entries, newest first
func (s *StockService) ListMovements(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]MovementResponse, int64, error) {
	var (
		movements []inventory.Movement
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movements, total, err = repos.Movements().FindByProduct(ctx, productID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// EvaluateAlerts re-runs the alert generator for a product
func (s *StockService) EvaluateAlerts(ctx context.Context, productID uuid.UUID) (*AlertResponse, error) {
	var events uow.EventCollector
	var response *AlertResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		alert, err := s.alerts.Evaluate(ctx, repos, productID, &events)
		if err != nil {
			return err
		}
		if alert != nil {
			r := ToAlertResponse(alert)
			response = &r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return response, nil
}

// ListAlerts lists stock alerts
func (s *StockService) ListAlerts(ctx context.Context, filter AlertListFilter) ([]AlertResponse, int64, error) {
	domainFilter := inventory.AlertFilter{
		ProductID:          filter.ProductID,
		UnacknowledgedOnly: filter.UnacknowledgedOnly,
		Filter:             shared.DefaultFilter(),
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	var (
		alerts []inventory.StockAlert
		total  int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		alerts, total, err = repos.Alerts().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]AlertResponse, len(alerts))
	for i := range alerts {
		out[i] = ToAlertResponse(&alerts[i])
	}
	return out, total, nil
}

// AcknowledgeAlert marks an alert as seen by actorID
func (s *StockService) AcknowledgeAlert(ctx context.Context, alertID, actorID uuid.UUID) (*AlertResponse, error) {
	var response AlertResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		alert, err := repos.Alerts().FindByID(ctx, alertID)
		if err != nil {
			return err
		}
		if err := alert.Acknowledge(actorID, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		response = ToAlertResponse(alert)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// CheckAvailability reports whether qty could be reserved right now
func (s *StockService) CheckAvailability(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (bool, decimal.Decimal, error) {
	inv, err := s.GetInventory(ctx, productID)
	if err != nil {
		return false, decimal.Zero, err
	}
	return inv.Available.GreaterThanOrEqual(qty), inv.Available, nil
}
