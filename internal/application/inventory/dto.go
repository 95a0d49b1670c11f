package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryResponse is a product's stock position
type InventoryResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	StockValue       decimal.Decimal `json:"stock_value"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToInventoryResponse converts a record to its response
func ToInventoryResponse(r *inventory.InventoryRecord) InventoryResponse {
	return InventoryResponse{
		ProductID:        r.ProductID,
		Quantity:         r.Quantity,
		ReservedQuantity: r.ReservedQuantity,
		Available:        r.Available(),
		AverageCost:      r.AverageCost,
		StockValue:       r.StockValue(),
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

// MovementResponse is one stock ledger entry
type MovementResponse struct {
	ID            uuid.UUID              `json:"id"`
	ProductID     uuid.UUID              `json:"product_id"`
	Type          inventory.MovementType `json:"movement_type"`
	Quantity      decimal.Decimal        `json:"quantity"`
	UnitCost      decimal.Decimal        `json:"unit_cost"`
	BalanceAfter  decimal.Decimal        `json:"balance_after"`
	ReferenceKind string                 `json:"reference_kind"`
	ReferenceID   uuid.UUID              `json:"reference_id"`
	ActorID       uuid.UUID              `json:"actor_id"`
	Notes         string                 `json:"notes,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// ToMovementResponse converts a movement to its response
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		BalanceAfter:  m.BalanceAfter,
		ReferenceKind: string(m.Reference.Kind),
		ReferenceID:   m.Reference.ID,
		ActorID:       m.ActorID,
		Notes:         m.Notes,
		OccurredAt:    m.OccurredAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}

// AlertResponse is a stock alert
type AlertResponse struct {
	ID              uuid.UUID           `json:"id"`
	ProductID       uuid.UUID           `json:"product_id"`
	AlertType       inventory.AlertType `json:"alert_type"`
	Threshold       decimal.Decimal     `json:"threshold"`
	CurrentQuantity decimal.Decimal     `json:"current_quantity"`
	Acknowledged    bool                `json:"acknowledged"`
	AcknowledgedBy  *uuid.UUID          `json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time          `json:"acknowledged_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ToAlertResponse converts an alert to its response
func ToAlertResponse(a *inventory.StockAlert) AlertResponse {
	return AlertResponse{
		ID:              a.ID,
		ProductID:       a.ProductID,
		AlertType:       a.AlertType,
		Threshold:       a.Threshold,
		CurrentQuantity: a.CurrentQuantity,
		Acknowledged:    a.Acknowledged,
		AcknowledgedBy:  a.AcknowledgedBy,
		AcknowledgedAt:  a.AcknowledgedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// ReserveStockRequest holds stock for a caller-managed reservation
type ReserveStockRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// ReleaseStockRequest gives back a reservation
type ReleaseStockRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// DeductStockRequest removes stock
type DeductStockRequest struct {
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	Type          inventory.MovementType
	ReferenceKind inventory.ReferenceKind
	ReferenceID   uuid.UUID
	UnitCost      *decimal.Decimal
	Notes         string
	ActorID       uuid.UUID
}

// DeductStockResponse carries the new position and the cost in force before the deduction
type DeductStockResponse struct {
	Inventory  InventoryResponse `json:"inventory"`
	Movement   MovementResponse  `json:"movement"`
	CostBefore decimal.Decimal   `json:"cost_before"`
}

// CreditStockRequest adds stock
type CreditStockRequest struct {
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Type          inventory.MovementType
	ReferenceKind inventory.ReferenceKind
	ReferenceID   uuid.UUID
	Notes         string
	ActorID       uuid.UUID
}

// StockChangeResponse carries the new position and the ledger entry written
type StockChangeResponse struct {
	Inventory InventoryResponse `json:"inventory"`
	Movement  MovementResponse  `json:"movement"`
}

// AdjustStockRequest is a manual correction. A negative Delta deducts, a
// positive Delta credits at the current average cost.
type AdjustStockRequest struct {
	ProductID uuid.UUID
	Delta     decimal.Decimal
	Type      inventory.MovementType
	Reason    string
	ActorID   uuid.UUID
}

// AlertListFilter narrows alert listings
type AlertListFilter struct {
	ProductID          *uuid.UUID
	UnacknowledgedOnly bool
	Page               int
	PageSize           int
}
