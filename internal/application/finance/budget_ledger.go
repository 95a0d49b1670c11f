package finance

import (
	"context"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetLedger appends budget entries inside a caller's unit of work.
// Every write takes the budget lock first so the balance read and the
// append cannot interleave with another writer.
type BudgetLedger struct {
	clock shared.Clock
}

// NewBudgetLedger creates a BudgetLedger
func NewBudgetLedger(clock shared.Clock) *BudgetLedger {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &BudgetLedger{clock: clock}
}

// Current returns the budget under the lock
func (l *BudgetLedger) Current(ctx context.Context, repos uow.Repositories) (decimal.Decimal, error) {
	if err := repos.Budget().Lock(ctx); err != nil {
		return decimal.Zero, err
	}
	return repos.Budget().Sum(ctx)
}

// Debit checks the budget covers amount and appends the matching deduction.
// Returns ErrInsufficientBudget without writing anything otherwise.
func (l *BudgetLedger) Debit(ctx context.Context, repos uow.Repositories, amount decimal.Decimal, description, referenceKind string, referenceID, actorID uuid.UUID, events *uow.EventCollector) (*finance.BudgetEntry, error) {
	budget, err := l.Current(ctx, repos)
	if err != nil {
		return nil, err
	}
	if err := finance.EnsureCovers(budget, amount); err != nil {
		return nil, err
	}

	entry, err := finance.NewBudgetEntry(finance.BudgetEntryDeduction, amount, description, actorID, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if referenceKind != "" {
		entry.ForReference(referenceKind, referenceID)
	}
	if err := repos.Budget().Append(ctx, entry); err != nil {
		return nil, err
	}
	events.Add(finance.NewBudgetEntryRecordedEvent(entry, budget.Add(entry.Amount)))
	return entry, nil
}

// Record appends a manual entry. Deductions go through the same gate as Debit.
func (l *BudgetLedger) Record(ctx context.Context, repos uow.Repositories, entry *finance.BudgetEntry, events *uow.EventCollector) (decimal.Decimal, error) {
	budget, err := l.Current(ctx, repos)
	if err != nil {
		return decimal.Zero, err
	}
	if entry.Type == finance.BudgetEntryDeduction {
		if err := finance.EnsureCovers(budget, entry.Amount.Abs()); err != nil {
			return decimal.Zero, err
		}
	}
	if err := repos.Budget().Append(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	after := budget.Add(entry.Amount)
	events.Add(finance.NewBudgetEntryRecordedEvent(entry, after))
	return after, nil
}
