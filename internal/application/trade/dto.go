package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest represents a request to create a purchase
type CreatePurchaseRequest struct {
	SupplierID    uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	PricePerUnit  decimal.Decimal
	PackagingCost decimal.Decimal
	TransportCost decimal.Decimal
	OtherCost     decimal.Decimal
	PurchaseDate  time.Time
	Notes         string
	ActorID       uuid.UUID
}

// UpdatePurchaseRequest replaces the terms of a pending purchase
type UpdatePurchaseRequest struct {
	Quantity      decimal.Decimal
	PricePerUnit  decimal.Decimal
	PackagingCost decimal.Decimal
	TransportCost decimal.Decimal
	OtherCost     decimal.Decimal
	Notes         string
	ActorID       uuid.UUID
}

// PurchaseListFilter narrows purchase listings
type PurchaseListFilter struct {
	Status     string
	SupplierID *uuid.UUID
	ProductID  *uuid.UUID
	Page       int
	PageSize   int
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	OtherCost     decimal.Decimal `json:"other_cost"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Status        string          `json:"status"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	Notes         string          `json:"notes"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToPurchaseResponse converts a domain Purchase to PurchaseResponse
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		PricePerUnit:  p.PricePerUnit,
		PackagingCost: p.PackagingCost,
		TransportCost: p.TransportCost,
		OtherCost:     p.OtherCost,
		GrandTotal:    p.GrandTotal,
		Status:        string(p.Status),
		PurchaseDate:  p.PurchaseDate,
		CompletedAt:   p.CompletedAt,
		CancelledAt:   p.CancelledAt,
		CancelReason:  p.CancelReason,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// OrderItemInput is one requested order line. A nil UnitPrice uses the
// product's selling price.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID      uuid.UUID
	FulfillmentType trade.FulfillmentType
	DeliveryAddress string
	DiscountAmount  decimal.Decimal
	DeliveryFee     decimal.Decimal
	Notes           string
	Items           []OrderItemInput
	ActorID         uuid.UUID
}

// AddOrderItemRequest adds a line to a pending order
type AddOrderItemRequest struct {
	OrderItemInput
	ActorID uuid.UUID
}

// UpdateOrderItemRequest edits a pending line. Nil fields are left unchanged.
type UpdateOrderItemRequest struct {
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
	ActorID   uuid.UUID
}

// SetOrderChargesRequest sets the discount and delivery fee of a pending order
type SetOrderChargesRequest struct {
	DiscountAmount decimal.Decimal
	DeliveryFee    decimal.Decimal
	ActorID        uuid.UUID
}

// TransitionOrderRequest moves an order to a new status
type TransitionOrderRequest struct {
	Status  trade.OrderStatus
	Reason  string
	ActorID uuid.UUID
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	Status     string
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Total     decimal.Decimal  `json:"total"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	Margin    *decimal.Decimal `json:"margin,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	FulfillmentType string              `json:"fulfillment_type"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	DeliveryFee     decimal.Decimal     `json:"delivery_fee"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	Outstanding     decimal.Decimal     `json:"outstanding"`
	Items           []OrderItemResponse `json:"items"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	Notes           string              `json:"notes"`
	CreatedBy       uuid.UUID           `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
			CostPrice: item.CostPrice,
		}
		if margin, ok := item.Margin(); ok {
			items[i].Margin = &margin
		}
	}

	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		FulfillmentType: string(o.FulfillmentType),
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		AmountPaid:      o.AmountPaid,
		Outstanding:     o.Outstanding(),
		Items:           items,
		ConfirmedAt:     o.ConfirmedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		Notes:           o.Notes,
		CreatedBy:       o.CreatedBy,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}
