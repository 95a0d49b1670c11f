package trade

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusCompleted, PurchaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// PurchaseCosts are the landed charges on top of the goods price
type PurchaseCosts struct {
	Packaging decimal.Decimal
	Transport decimal.Decimal
	Other     decimal.Decimal
}

func (c PurchaseCosts) validate() error {
	if c.Packaging.IsNegative() || c.Transport.IsNegative() || c.Other.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase costs cannot be negative")
	}
	return nil
}

// Purchase is a single-product buy from a supplier. Completing it spends
// budget and credits inventory; a completed purchase is immutable.
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PackagingCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransportCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        PurchaseStatus  `gorm:"type:varchar(20);not null;default:'pending';index"`
	PurchaseDate  time.Time       `gorm:"not null"`
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string    `gorm:"type:varchar(500)"`
	Notes         string    `gorm:"type:text"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a pending purchase and freezes its grand total
func NewPurchase(supplierID, productID uuid.UUID, quantity, pricePerUnit decimal.Decimal, costs PurchaseCosts, actorID uuid.UUID, at time.Time) (*Purchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}

	p := &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		SupplierID:        supplierID,
		ProductID:         productID,
		Status:            PurchaseStatusPending,
		PurchaseDate:      at,
		CreatedBy:         actorID,
	}
	if err := p.setTerms(quantity, pricePerUnit, costs); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits the terms of a pending purchase and recomputes its grand total
func (p *Purchase) Update(quantity, pricePerUnit decimal.Decimal, costs PurchaseCosts, notes string, at time.Time) error {
	if p.Status != PurchaseStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit purchase in %s status", p.Status))
	}
	if err := p.setTerms(quantity, pricePerUnit, costs); err != nil {
		return err
	}
	p.Notes = notes
	p.Touch(at)
	p.IncrementVersion()
	return nil
}

func (p *Purchase) setTerms(quantity, pricePerUnit decimal.Decimal, costs PurchaseCosts) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if pricePerUnit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Price per unit cannot be negative")
	}
	if err := costs.validate(); err != nil {
		return err
	}

	p.Quantity = quantity
	p.PricePerUnit = pricePerUnit
	p.PackagingCost = costs.Packaging
	p.TransportCost = costs.Transport
	p.OtherCost = costs.Other
	p.GrandTotal = quantity.Mul(pricePerUnit).
		Add(costs.Packaging).
		Add(costs.Transport).
		Add(costs.Other).
		Round(4)
	return nil
}

// Complete marks a pending purchase completed. Budget and stock effects are
// applied by the caller in the same transaction.
func (p *Purchase) Complete(actorID uuid.UUID, at time.Time) error {
	if p.Status != PurchaseStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot complete purchase in %s status", p.Status))
	}
	p.Status = PurchaseStatusCompleted
	p.CompletedAt = &at
	p.Touch(at)
	p.IncrementVersion()

	p.AddDomainEvent(NewPurchaseCompletedEvent(p, actorID, at))
	return nil
}

// Cancel abandons a pending purchase
func (p *Purchase) Cancel(reason string, at time.Time) error {
	if p.Status != PurchaseStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel purchase in %s status", p.Status))
	}
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &at
	p.CancelReason = reason
	p.Touch(at)
	p.IncrementVersion()
	return nil
}

// CanDelete returns an error for completed purchases
func (p *Purchase) CanDelete() error {
	if p.Status == PurchaseStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Completed purchases cannot be deleted")
	}
	return nil
}

// IsPending returns true if the purchase has not been completed or cancelled
func (p *Purchase) IsPending() bool {
	return p.Status == PurchaseStatusPending
}
