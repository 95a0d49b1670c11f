package inventory

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger applies stock mutations inside a caller's unit of work. Every call
// row-locks the product's record first, so concurrent mutations of the same
// product serialize and the reserved <= quantity check cannot race.
type Ledger struct {
	clock shared.Clock
}

// NewLedger creates a Ledger
func NewLedger(clock shared.Clock) *Ledger {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Ledger{clock: clock}
}

// DeductResult is the outcome of a deduction
type DeductResult struct {
	Record     *inventory.InventoryRecord
	Movement   *inventory.Movement
	CostBefore decimal.Decimal
}

// CreditResult is the outcome of a credit
type CreditResult struct {
	Record   *inventory.InventoryRecord
	Movement *inventory.Movement
}

// Lock returns the product's record under a row lock, creating an empty
// record if the product has none yet
func (l *Ledger) Lock(ctx context.Context, repos uow.Repositories, productID uuid.UUID) (*inventory.InventoryRecord, error) {
	record, err := repos.Inventory().FindByProductForUpdate(ctx, productID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err = inventory.NewInventoryRecord(productID, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := repos.Inventory().Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Reserve holds qty of the product for a pending order
func (l *Ledger) Reserve(ctx context.Context, repos uow.Repositories, productID uuid.UUID, qty decimal.Decimal, events *uow.EventCollector) (*inventory.InventoryRecord, error) {
	record, err := l.Lock(ctx, repos, productID)
	if err != nil {
		return nil, err
	}
	if err := record.Reserve(qty, l.clock.Now()); err != nil {
		return nil, err
	}
	if err := repos.Inventory().Save(ctx, record); err != nil {
		return nil, err
	}
	events.Collect(record)
	return record, nil
}

// Release gives back up to qty of the product's reservation
func (l *Ledger) Release(ctx context.Context, repos uow.Repositories, productID uuid.UUID, qty decimal.Decimal, events *uow.EventCollector) (decimal.Decimal, error) {
	record, err := l.Lock(ctx, repos, productID)
	if err != nil {
		return decimal.Zero, err
	}
	released, err := record.Release(qty, l.clock.Now())
	if err != nil {
		return decimal.Zero, err
	}
	if released.IsZero() {
		return released, nil
	}
	if err := repos.Inventory().Save(ctx, record); err != nil {
		return decimal.Zero, err
	}
	events.Collect(record)
	return released, nil
}

// Deduct removes stock and appends the matching movement
func (l *Ledger) Deduct(ctx context.Context, repos uow.Repositories, productID uuid.UUID, change inventory.StockChange, events *uow.EventCollector) (*DeductResult, error) {
	record, err := l.Lock(ctx, repos, productID)
	if err != nil {
		return nil, err
	}
	movement, costBefore, err := record.Deduct(change, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := repos.Inventory().Save(ctx, record); err != nil {
		return nil, err
	}
	if err := repos.Movements().Append(ctx, movement); err != nil {
		return nil, err
	}
	events.Collect(record)
	return &DeductResult{Record: record, Movement: movement, CostBefore: costBefore}, nil
}

// Credit adds stock, re-averages the cost and appends the matching movement
func (l *Ledger) Credit(ctx context.Context, repos uow.Repositories, productID uuid.UUID, change inventory.StockChange, events *uow.EventCollector) (*CreditResult, error) {
	record, err := l.Lock(ctx, repos, productID)
	if err != nil {
		return nil, err
	}
	movement, err := record.Credit(change, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := repos.Inventory().Save(ctx, record); err != nil {
		return nil, err
	}
	if err := repos.Movements().Append(ctx, movement); err != nil {
		return nil, err
	}
	events.Collect(record)
	return &CreditResult{Record: record, Movement: movement}, nil
}
