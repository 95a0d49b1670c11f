package trade

import (
	"context"
	"sort"

	appinventory "github.com/erp/ledger/internal/application/inventory"
	apppartner "github.com/erp/ledger/internal/application/partner"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order-related business operations. Stock is
// reserved while an order is pending and deducted once when it first moves
// past pending.
type OrderService struct {
	txScope        uow.TransactionScope
	ledger         *appinventory.Ledger
	alerts         *appinventory.AlertGenerator
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope uow.TransactionScope,
	ledger *appinventory.Ledger,
	alerts *appinventory.AlertGenerator,
	clock shared.Clock,
	logger *zap.Logger,
) *OrderService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		txScope: txScope,
		ledger:  ledger,
		alerts:  alerts,
		clock:   clock,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics records created orders on metrics
func (s *OrderService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// Create creates a pending order and reserves stock for every line
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	now := s.clock.Now()
	order, err := trade.NewOrder(trade.GenerateOrderNumber(now), req.CustomerID, req.FulfillmentType, req.DeliveryAddress, req.ActorID, now)
	if err != nil {
		return nil, err
	}
	order.Notes = req.Notes

	items := make([]OrderItemInput, len(req.Items))
	copy(items, req.Items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})

	var events uow.EventCollector
	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, req.CustomerID); err != nil {
			return err
		}
		for _, input := range items {
			if err := s.addItem(ctx, repos, order, input, &events); err != nil {
				return err
			}
		}
		if !req.DiscountAmount.IsZero() || !req.DeliveryFee.IsZero() {
			if err := order.SetCharges(req.DiscountAmount, req.DeliveryFee, now); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		s.logRejected("create order", uuid.Nil, err)
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.String("actor_id", req.ActorID.String()))
	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, string(order.FulfillmentType), order.TotalAmount)
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	response := ToOrderResponse(order)
	return &response, nil
}

// AddItem adds a line to a pending order and reserves its quantity
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req AddOrderItemRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, "add order item", func(repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error {
		return s.addItem(ctx, repos, order, req.OrderItemInput, events)
	})
}

// UpdateItem changes a pending line and moves its reservation by the quantity delta
func (s *OrderService) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateOrderItemRequest) (*OrderResponse, error) {
	var orderID uuid.UUID
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByItemID(ctx, itemID)
		if err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, "update order item", func(repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error {
		item, err := order.FindItem(itemID)
		if err != nil {
			return err
		}
		quantity, unitPrice := item.Quantity, item.UnitPrice
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		productID := item.ProductID

		oldQuantity, err := order.UpdateItem(itemID, quantity, unitPrice, s.clock.Now())
		if err != nil {
			return err
		}

		delta := quantity.Sub(oldQuantity)
		switch {
		case delta.IsPositive():
			_, err = s.ledger.Reserve(ctx, repos, productID, delta, events)
		case delta.IsNegative():
			_, err = s.ledger.Release(ctx, repos, productID, delta.Neg(), events)
		}
		return err
	})
}

// RemoveItem drops a pending line and releases its reservation
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID, actorID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, "remove order item", func(repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error {
		removed, err := order.RemoveItem(itemID, s.clock.Now())
		if err != nil {
			return err
		}
		_, err = s.ledger.Release(ctx, repos, removed.ProductID, removed.Quantity, events)
		return err
	})
}

// SetCharges sets the discount and delivery fee of a pending order
func (s *OrderService) SetCharges(ctx context.Context, orderID uuid.UUID, req SetOrderChargesRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, "set order charges", func(_ uow.Repositories, order *trade.Order, _ *uow.EventCollector) error {
		return order.SetCharges(req.DiscountAmount, req.DeliveryFee, s.clock.Now())
	})
}

// Transition moves an order to a new status and applies the stock and
// customer side effects of the move in the same transaction:
//   - the first move past pending releases each line's reservation, deducts
//     it as a sale, snapshots the cost price and re-evaluates alerts
//   - cancelling a pending order releases its reservations
//   - reaching delivered while fully paid credits the customer
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, req TransitionOrderRequest) (*OrderResponse, error) {
	var from trade.OrderStatus
	var restockSkipped, repeated bool

	response, err := s.mutate(ctx, orderID, "transition order", func(repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error {
		from = order.Status
		repeated = order.IsRepeatedConfirm(req.Status)
		needsDeduction := order.NeedsStockDeduction(req.Status)
		holdsReservations := order.HoldsReservations()

		now := s.clock.Now()
		if err := order.TransitionTo(req.Status, req.Reason, now); err != nil {
			return err
		}

		if needsDeduction {
			if err := s.deductStock(ctx, repos, order, req.ActorID, events); err != nil {
				return err
			}
		}

		if req.Status == trade.OrderStatusCancelled {
			if holdsReservations {
				if err := s.releaseAll(ctx, repos, order, events); err != nil {
					return err
				}
			} else if order.StockDeducted {
				restockSkipped = true
			}
		}

		if req.Status == trade.OrderStatusDelivered {
			if _, err := apppartner.CreditCustomerIfDue(ctx, repos, order, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if restockSkipped {
		s.logger.Warn("order cancelled after stock deduction, stock not restored",
			zap.String("order_id", orderID.String()),
			zap.String("from", string(from)),
			zap.String("actor_id", req.ActorID.String()))
	}
	if repeated {
		s.logger.Debug("order already confirmed", zap.String("order_id", orderID.String()))
		return response, nil
	}
	s.logger.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
		zap.String("actor_id", req.ActorID.String()))
	return response, nil
}

// Delete removes a pending or cancelled order without payments. A pending
// order's reservations are released first.
func (s *OrderService) Delete(ctx context.Context, orderID, actorID uuid.UUID) error {
	var events uow.EventCollector
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.CanDelete(); err != nil {
			return err
		}
		payments, err := repos.Payments().FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if len(payments) > 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "Orders with payments cannot be deleted")
		}
		if order.HoldsReservations() {
			if err := s.releaseAll(ctx, repos, order, &events); err != nil {
				return err
			}
		}
		return repos.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		s.logRejected("delete order", orderID, err)
		return err
	}

	s.logger.Info("order deleted",
		zap.String("order_id", orderID.String()),
		zap.String("actor_id", actorID.String()))
	events.Publish(ctx, s.eventPublisher, s.logger)
	return nil
}

// GetByID retrieves an order with its lines
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := trade.OrderFilter{
		Filter:     shared.DefaultFilter(),
		Status:     trade.OrderStatus(filter.Status),
		CustomerID: filter.CustomerID,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if domainFilter.Status != "" && !domainFilter.Status.IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "Invalid order status")
	}

	var (
		orders []trade.Order
		total  int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		orders, total, err = repos.Orders().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// mutate runs fn against the row-locked order and saves it
func (s *OrderService) mutate(
	ctx context.Context,
	orderID uuid.UUID,
	action string,
	fn func(repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error,
) (*OrderResponse, error) {
	var events uow.EventCollector
	var response OrderResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order, &events); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		events.Collect(order)
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		s.logRejected(action, orderID, err)
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

func (s *OrderService) addItem(ctx context.Context, repos uow.Repositories, order *trade.Order, input OrderItemInput, events *uow.EventCollector) error {
	product, err := repos.Products().FindByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if err := product.EnsureTradable(); err != nil {
		return err
	}
	unitPrice := product.SellingPrice
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}

	if _, err := order.AddItem(product.ID, input.Quantity, unitPrice, s.clock.Now()); err != nil {
		return err
	}
	_, err = s.ledger.Reserve(ctx, repos, product.ID, input.Quantity, events)
	return err
}

// deductStock turns the order's reservations into sale movements. Lines are
// processed in product order so concurrent orders lock records consistently.
func (s *OrderService) deductStock(ctx context.Context, repos uow.Repositories, order *trade.Order, actorID uuid.UUID, events *uow.EventCollector) error {
	for _, item := range sortedItems(order) {
		if _, err := s.ledger.Release(ctx, repos, item.ProductID, item.Quantity, events); err != nil {
			return err
		}
		result, err := s.ledger.Deduct(ctx, repos, item.ProductID, inventory.StockChange{
			Quantity:  item.Quantity,
			Type:      inventory.MovementTypeSale,
			Reference: inventory.OrderItemRef(item.ID),
			ActorID:   actorID,
			Notes:     "Order " + order.OrderNumber,
		}, events)
		if err != nil {
			return err
		}
		if err := order.SnapshotCost(item.ID, result.CostBefore); err != nil {
			return err
		}
		if _, err := s.alerts.Evaluate(ctx, repos, item.ProductID, events); err != nil {
			return err
		}
	}
	order.MarkStockDeducted()
	return nil
}

func (s *OrderService) releaseAll(ctx context.Context, repos uow.Repositories, order *trade.Order, events *uow.EventCollector) error {
	for _, item := range sortedItems(order) {
		if _, err := s.ledger.Release(ctx, repos, item.ProductID, item.Quantity, events); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) logRejected(action string, orderID uuid.UUID, err error) {
	if _, ok := shared.IsDomainError(err); ok {
		s.logger.Info(action+" rejected", zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	s.logger.Error(action+" failed", zap.String("order_id", orderID.String()), zap.Error(err))
}

type itemRef struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

func sortedItems(order *trade.Order) []itemRef {
	refs := make([]itemRef, len(order.Items))
	for i, item := range order.Items {
		refs[i] = itemRef{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity}
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].ProductID.String() < refs[j].ProductID.String()
	})
	return refs
}
