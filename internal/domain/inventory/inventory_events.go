package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInventoryRecord = "InventoryRecord"
	AggregateTypeStockAlert      = "StockAlert"
)

// Event type constants
const (
	EventTypeStockReserved    = "StockReserved"
	EventTypeStockReleased    = "StockReleased"
	EventTypeStockDeducted    = "StockDeducted"
	EventTypeStockCredited    = "StockCredited"
	EventTypeStockAlertRaised = "StockAlertRaised"
)

// StockReservedEvent is raised when stock is held for an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
}

// NewStockReservedEvent creates a StockReservedEvent
func NewStockReservedEvent(r *InventoryRecord, qty decimal.Decimal, at time.Time) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeInventoryRecord, r.ID, at),
		ProductID:        r.ProductID,
		Quantity:         qty,
		ReservedQuantity: r.ReservedQuantity,
	}
}

// StockReleasedEvent is raised when a reservation is given back
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
}

// NewStockReleasedEvent creates a StockReleasedEvent
func NewStockReleasedEvent(r *InventoryRecord, qty decimal.Decimal, at time.Time) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeInventoryRecord, r.ID, at),
		ProductID:        r.ProductID,
		Quantity:         qty,
		ReservedQuantity: r.ReservedQuantity,
	}
}

// StockDeductedEvent is raised when stock leaves the warehouse
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	MovementID   uuid.UUID       `json:"movement_id"`
	MovementType MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// NewStockDeductedEvent creates a StockDeductedEvent
func NewStockDeductedEvent(r *InventoryRecord, m *Movement, at time.Time) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, AggregateTypeInventoryRecord, r.ID, at),
		ProductID:       r.ProductID,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Quantity:        m.Quantity.Abs(),
		UnitCost:        m.UnitCost,
		BalanceAfter:    m.BalanceAfter,
	}
}

// StockCreditedEvent is raised when stock arrives
type StockCreditedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	MovementID   uuid.UUID       `json:"movement_id"`
	MovementType MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// NewStockCreditedEvent creates a StockCreditedEvent
func NewStockCreditedEvent(r *InventoryRecord, m *Movement, at time.Time) *StockCreditedEvent {
	return &StockCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCredited, AggregateTypeInventoryRecord, r.ID, at),
		ProductID:       r.ProductID,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		AverageCost:     r.AverageCost,
		BalanceAfter:    m.BalanceAfter,
	}
}

// StockAlertRaisedEvent is raised when a new alert replaces the product's open one
type StockAlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID         uuid.UUID       `json:"alert_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	AlertType       AlertType       `json:"alert_type"`
	Threshold       decimal.Decimal `json:"threshold"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
}

// NewStockAlertRaisedEvent creates a StockAlertRaisedEvent
func NewStockAlertRaisedEvent(a *StockAlert) *StockAlertRaisedEvent {
	return &StockAlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertRaised, AggregateTypeStockAlert, a.ID, a.CreatedAt),
		AlertID:         a.ID,
		ProductID:       a.ProductID,
		AlertType:       a.AlertType,
		Threshold:       a.Threshold,
		CurrentQuantity: a.CurrentQuantity,
	}
}
