package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchase = "Purchase"
	AggregateTypeOrder    = "Order"
)

// Event type constants
const (
	EventTypePurchaseCompleted  = "PurchaseCompleted"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// PurchaseCompletedEvent is raised when a purchase is received into stock
type PurchaseCompletedEvent struct {
	shared.BaseDomainEvent
	PurchaseID   uuid.UUID       `json:"purchase_id"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	CompletedBy  uuid.UUID       `json:"completed_by"`
}

// NewPurchaseCompletedEvent creates a PurchaseCompletedEvent
func NewPurchaseCompletedEvent(p *Purchase, actorID uuid.UUID, at time.Time) *PurchaseCompletedEvent {
	return &PurchaseCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCompleted, AggregateTypePurchase, p.ID, at),
		PurchaseID:      p.ID,
		SupplierID:      p.SupplierID,
		ProductID:       p.ProductID,
		Quantity:        p.Quantity,
		PricePerUnit:    p.PricePerUnit,
		GrandTotal:      p.GrandTotal,
		CompletedBy:     actorID,
	}
}

// OrderStatusChangedEvent is raised on every order transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	From        OrderStatus     `json:"from"`
	To          OrderStatus     `json:"to"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Reason      string          `json:"reason,omitempty"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus, reason string, at time.Time) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, at),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		From:            from,
		To:              o.Status,
		TotalAmount:     o.TotalAmount,
		Reason:          reason,
	}
}
