package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertType represents the kind of stock alert
type AlertType string

const (
	AlertTypeLowStock   AlertType = "low_stock"
	AlertTypeOutOfStock AlertType = "out_of_stock"
	AlertTypeOverstock  AlertType = "overstock"
)

// IsValid returns true if the alert type is valid
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeLowStock, AlertTypeOutOfStock, AlertTypeOverstock:
		return true
	}
	return false
}

// StockAlert flags a product whose stock needs attention.
// At most one unacknowledged alert exists per product.
type StockAlert struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_alert_product_ack,priority:1"`
	AlertType       AlertType       `gorm:"type:varchar(20);not null"`
	Threshold       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Acknowledged    bool            `gorm:"not null;default:false;index:idx_stock_alert_product_ack,priority:2"`
	AcknowledgedBy  *uuid.UUID      `gorm:"type:uuid"`
	AcknowledgedAt  *time.Time
}

// TableName returns the table name for GORM
func (StockAlert) TableName() string {
	return "stock_alerts"
}

// EvaluateStockLevel decides which alert, if any, a stock level warrants.
// Zero or less is out of stock; at or below a positive threshold is low stock.
func EvaluateStockLevel(productID uuid.UUID, quantity, threshold decimal.Decimal, at time.Time) *StockAlert {
	var alertType AlertType
	switch {
	case !quantity.IsPositive():
		alertType = AlertTypeOutOfStock
	case threshold.IsPositive() && quantity.LessThanOrEqual(threshold):
		alertType = AlertTypeLowStock
	default:
		return nil
	}

	return &StockAlert{
		BaseEntity:      shared.NewBaseEntity(at),
		ProductID:       productID,
		AlertType:       alertType,
		Threshold:       threshold,
		CurrentQuantity: quantity,
	}
}

// Acknowledge marks the alert as seen. Acknowledged alerts survive re-evaluation.
func (a *StockAlert) Acknowledge(actorID uuid.UUID, at time.Time) error {
	if a.Acknowledged {
		return shared.NewDomainError(shared.CodeInvalidState, "Alert is already acknowledged")
	}
	a.Acknowledged = true
	a.AcknowledgedBy = &actorID
	a.AcknowledgedAt = &at
	a.Touch(at)
	return nil
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	ProductID          *uuid.UUID
	UnacknowledgedOnly bool
	shared.Filter
}
