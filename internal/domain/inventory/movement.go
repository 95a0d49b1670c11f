package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeDamage     MovementType = "damage"
	MovementTypeReturn     MovementType = "return"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSale,
		MovementTypeAdjustment,
		MovementTypeDamage,
		MovementTypeReturn:
		return true
	}
	return false
}

// CanIncrease returns true if the type may carry a positive delta
func (t MovementType) CanIncrease() bool {
	switch t {
	case MovementTypePurchase, MovementTypeReturn, MovementTypeAdjustment:
		return true
	}
	return false
}

// CanDecrease returns true if the type may carry a negative delta
func (t MovementType) CanDecrease() bool {
	switch t {
	case MovementTypeSale, MovementTypeDamage, MovementTypeAdjustment:
		return true
	}
	return false
}

// ReferenceKind names the kind of document a movement points at
type ReferenceKind string

const (
	ReferenceKindPurchase   ReferenceKind = "purchase"
	ReferenceKindOrderItem  ReferenceKind = "order_item"
	ReferenceKindAdjustment ReferenceKind = "adjustment"
)

// IsValid returns true if the reference kind is valid
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindPurchase, ReferenceKindOrderItem, ReferenceKindAdjustment:
		return true
	}
	return false
}

// Reference identifies the document that caused a movement
type Reference struct {
	Kind ReferenceKind `gorm:"type:varchar(20);not null;index:idx_movement_reference,priority:1"`
	ID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_movement_reference,priority:2"`
}

// PurchaseRef references a purchase
func PurchaseRef(id uuid.UUID) Reference {
	return Reference{Kind: ReferenceKindPurchase, ID: id}
}

// OrderItemRef references an order line
func OrderItemRef(id uuid.UUID) Reference {
	return Reference{Kind: ReferenceKindOrderItem, ID: id}
}

// AdjustmentRef references a manual adjustment
func AdjustmentRef(id uuid.UUID) Reference {
	return Reference{Kind: ReferenceKindAdjustment, ID: id}
}

// Validate checks the reference is complete
func (r Reference) Validate() error {
	if !r.Kind.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid reference kind")
	}
	if r.ID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Reference ID cannot be empty")
	}
	return nil
}

// Movement is an immutable stock ledger entry. Corrections are new movements.
type Movement struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_time,priority:1"`
	Type         MovementType    `gorm:"column:movement_type;type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference    Reference       `gorm:"embedded;embeddedPrefix:reference_"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null"`
	Notes        string          `gorm:"type:varchar(500)"`
	OccurredAt   time.Time       `gorm:"not null;index:idx_movement_product_time,priority:2"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a ledger entry. quantity is the signed delta.
func NewMovement(
	productID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	balanceAfter decimal.Decimal,
	ref Reference,
	actorID uuid.UUID,
	at time.Time,
) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement quantity cannot be zero")
	}
	if quantity.IsPositive() && !movementType.CanIncrease() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement type "+movementType.String()+" cannot increase stock")
	}
	if quantity.IsNegative() && !movementType.CanDecrease() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement type "+movementType.String()+" cannot decrease stock")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit cost cannot be negative")
	}
	if balanceAfter.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Balance cannot be negative")
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	return &Movement{
		BaseEntity:   shared.NewBaseEntity(at),
		ProductID:    productID,
		Type:         movementType,
		Quantity:     quantity,
		UnitCost:     unitCost,
		BalanceAfter: balanceAfter,
		Reference:    ref,
		ActorID:      actorID,
		OccurredAt:   at,
	}, nil
}

// WithNotes attaches free-text notes to the movement
func (m *Movement) WithNotes(notes string) *Movement {
	m.Notes = notes
	return m
}

// TotalCost returns the absolute value moved
func (m *Movement) TotalCost() decimal.Decimal {
	return m.Quantity.Abs().Mul(m.UnitCost)
}

// IsInbound returns true if stock came in
func (m *Movement) IsInbound() bool {
	return m.Quantity.IsPositive()
}
