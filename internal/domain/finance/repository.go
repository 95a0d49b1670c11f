package finance

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetRepository is the append-only budget ledger
type BudgetRepository interface {
	// Lock serializes budget writers until the surrounding transaction ends
	Lock(ctx context.Context) error

	// Append writes a new entry
	Append(ctx context.Context, entry *BudgetEntry) error

	// Sum returns the sum of all entry amounts (the current budget)
	Sum(ctx context.Context) (decimal.Decimal, error)

	// FindAll lists entries, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]BudgetEntry, int64, error)
}

// PaymentRepository persists order payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder lists an order's payments, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)

	// SumCompletedByOrder totals the order's completed payments
	SumCompletedByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
