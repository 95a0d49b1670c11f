package inventory

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecord is the aggregate root for one product's stock position.
// Quantity is on-hand stock; ReservedQuantity is held by pending orders and
// never exceeds Quantity. AverageCost is the moving weighted average.
type InventoryRecord struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// StockChange describes one quantity-changing operation
type StockChange struct {
	Quantity  decimal.Decimal
	Type      MovementType
	Reference Reference
	ActorID   uuid.UUID
	// UnitCost is required for credits. For deductions it overrides the
	// average cost recorded on the movement.
	UnitCost *decimal.Decimal
	Notes    string
}

// NewInventoryRecord creates an empty record for a product
func NewInventoryRecord(productID uuid.UUID, at time.Time) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	return &InventoryRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		ProductID:         productID,
		Quantity:          decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		AverageCost:       decimal.Zero,
	}, nil
}

// Available returns quantity not held by reservations
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// Reserve holds qty for a pending order. Reservations are not movements.
func (r *InventoryRecord) Reserve(qty decimal.Decimal, at time.Time) error {
	if !qty.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Reserve quantity must be positive")
	}
	if r.Available().LessThan(qty) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock: available %s, requested %s", r.Available().String(), qty.String()))
	}

	r.ReservedQuantity = r.ReservedQuantity.Add(qty)
	r.Touch(at)
	r.IncrementVersion()

	r.AddDomainEvent(NewStockReservedEvent(r, qty, at))
	return nil
}

// Release gives back up to qty of reserved stock and returns the amount
// actually released. Releasing more than is reserved clamps at zero.
func (r *InventoryRecord) Release(qty decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "Release quantity must be positive")
	}

	released := decimal.Min(qty, r.ReservedQuantity)
	if released.IsZero() {
		return decimal.Zero, nil
	}

	r.ReservedQuantity = r.ReservedQuantity.Sub(released)
	r.Touch(at)
	r.IncrementVersion()

	r.AddDomainEvent(NewStockReleasedEvent(r, released, at))
	return released, nil
}

// Deduct removes stock and returns the ledger entry plus the average cost
// in force before the decrement. Stock held for other orders cannot be
// deducted, so callers consuming their own reservation release it first.
func (r *InventoryRecord) Deduct(change StockChange, at time.Time) (*Movement, decimal.Decimal, error) {
	if !change.Quantity.IsPositive() {
		return nil, decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "Deduct quantity must be positive")
	}
	if !change.Type.CanDecrease() {
		return nil, decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "Movement type "+change.Type.String()+" cannot decrease stock")
	}
	if r.Quantity.LessThan(change.Quantity) || r.Available().LessThan(change.Quantity) {
		return nil, decimal.Zero, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock: on hand %s, available %s, requested %s",
				r.Quantity.String(), r.Available().String(), change.Quantity.String()))
	}

	costBefore := r.AverageCost
	unitCost := costBefore
	if change.UnitCost != nil {
		unitCost = *change.UnitCost
	}

	newQuantity := r.Quantity.Sub(change.Quantity)
	movement, err := NewMovement(r.ProductID, change.Type, change.Quantity.Neg(), unitCost, newQuantity, change.Reference, change.ActorID, at)
	if err != nil {
		return nil, decimal.Zero, err
	}
	movement.WithNotes(change.Notes)

	r.Quantity = newQuantity
	r.Touch(at)
	r.IncrementVersion()

	r.AddDomainEvent(NewStockDeductedEvent(r, movement, at))
	return movement, costBefore, nil
}

// Credit adds stock at unitCost and recomputes the weighted average cost:
// new_avg = (old_qty*old_avg + qty*unit_cost) / (old_qty + qty).
// When stock was empty the new average is simply unitCost.
func (r *InventoryRecord) Credit(change StockChange, at time.Time) (*Movement, error) {
	if !change.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit quantity must be positive")
	}
	if !change.Type.CanIncrease() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement type "+change.Type.String()+" cannot increase stock")
	}
	if change.UnitCost == nil || change.UnitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit requires a non-negative unit cost")
	}
	unitCost := *change.UnitCost

	newQuantity := r.Quantity.Add(change.Quantity)
	movement, err := NewMovement(r.ProductID, change.Type, change.Quantity, unitCost, newQuantity, change.Reference, change.ActorID, at)
	if err != nil {
		return nil, err
	}
	movement.WithNotes(change.Notes)

	if r.Quantity.IsZero() {
		r.AverageCost = unitCost
	} else {
		totalValue := r.Quantity.Mul(r.AverageCost).Add(change.Quantity.Mul(unitCost))
		r.AverageCost = totalValue.Div(newQuantity).Round(4)
	}
	r.Quantity = newQuantity
	r.Touch(at)
	r.IncrementVersion()

	r.AddDomainEvent(NewStockCreditedEvent(r, movement, at))
	return movement, nil
}

// StockValue returns the on-hand valuation at average cost
func (r *InventoryRecord) StockValue() decimal.Decimal {
	return r.Quantity.Mul(r.AverageCost).Round(4)
}
