package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetEntryType classifies a budget ledger entry
type BudgetEntryType string

const (
	BudgetEntryInitial    BudgetEntryType = "initial"
	BudgetEntryAddition   BudgetEntryType = "addition"
	BudgetEntryDeduction  BudgetEntryType = "deduction"
	BudgetEntryAdjustment BudgetEntryType = "adjustment"
)

// IsValid checks if the entry type is valid
func (t BudgetEntryType) IsValid() bool {
	switch t {
	case BudgetEntryInitial, BudgetEntryAddition, BudgetEntryDeduction, BudgetEntryAdjustment:
		return true
	}
	return false
}

// String returns the string representation of BudgetEntryType
func (t BudgetEntryType) String() string {
	return string(t)
}

// BudgetEntry is an immutable line in the budget ledger.
// The current budget is the sum of every entry's signed Amount.
type BudgetEntry struct {
	shared.BaseEntity
	Type          BudgetEntryType `gorm:"column:entry_type;type:varchar(20);not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description   string          `gorm:"type:varchar(500)"`
	EntryDate     time.Time       `gorm:"not null;index"`
	ReferenceKind string          `gorm:"type:varchar(20)"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index"`
	ActorID       uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (BudgetEntry) TableName() string {
	return "budget_entries"
}

// NewBudgetEntry creates a budget entry. magnitude is positive for
// initial, addition and deduction (stored negative); adjustment carries its
// own sign and must be non-zero.
func NewBudgetEntry(entryType BudgetEntryType, magnitude decimal.Decimal, description string, actorID uuid.UUID, at time.Time) (*BudgetEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid budget entry type")
	}

	amount := magnitude
	switch entryType {
	case BudgetEntryInitial, BudgetEntryAddition:
		if !magnitude.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Budget "+entryType.String()+" must be positive")
		}
	case BudgetEntryDeduction:
		if !magnitude.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Budget deduction must be positive")
		}
		amount = magnitude.Neg()
	case BudgetEntryAdjustment:
		if magnitude.IsZero() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Budget adjustment cannot be zero")
		}
	}

	return &BudgetEntry{
		BaseEntity:  shared.NewBaseEntity(at),
		Type:        entryType,
		Amount:      amount,
		Description: description,
		EntryDate:   at,
		ActorID:     actorID,
	}, nil
}

// ForReference ties the entry to the document that caused it
func (e *BudgetEntry) ForReference(kind string, id uuid.UUID) *BudgetEntry {
	e.ReferenceKind = kind
	e.ReferenceID = &id
	return e
}

// WithEntryDate backdates or postdates the entry
func (e *BudgetEntry) WithEntryDate(date time.Time) *BudgetEntry {
	if !date.IsZero() {
		e.EntryDate = date
	}
	return e
}

// IsDebit returns true if the entry reduces the budget
func (e *BudgetEntry) IsDebit() bool {
	return e.Amount.IsNegative()
}

// EnsureCovers returns ErrInsufficientBudget if budget is below amount
func EnsureCovers(budget, amount decimal.Decimal) error {
	if budget.LessThan(amount) {
		return shared.NewDomainError(shared.CodeInsufficientBudget,
			"Insufficient budget: available "+budget.StringFixed(2)+", required "+amount.StringFixed(2))
	}
	return nil
}
