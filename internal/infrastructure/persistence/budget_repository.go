package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBudgetRepository implements BudgetRepository using GORM.
// Entries are insert-only; the budget is their sum.
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// Lock takes the budget lock row FOR UPDATE, seeding it on first use
func (r *GormBudgetRepository) Lock(ctx context.Context) error {
	var lock BudgetLedgerLock
	err := forUpdate(r.db.WithContext(ctx)).First(&lock, "id = ?", budgetLockID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to lock budget ledger: %w", err)
	}
	if err := ensureBudgetLock(r.db.WithContext(ctx)); err != nil {
		return err
	}
	if err := forUpdate(r.db.WithContext(ctx)).First(&lock, "id = ?", budgetLockID).Error; err != nil {
		return fmt.Errorf("failed to lock budget ledger: %w", err)
	}
	return nil
}

// Append writes a new entry
func (r *GormBudgetRepository) Append(ctx context.Context, entry *finance.BudgetEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Sum returns the current budget
func (r *GormBudgetRepository) Sum(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&finance.BudgetEntry{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindAll lists entries, newest entry date first by default
func (r *GormBudgetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.BudgetEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&finance.BudgetEntry{})
	if entryType, ok := filter.Filters["entry_type"]; ok && entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []finance.BudgetEntry
	if err := applyPaging(query, filter, BudgetEntrySortFields, "entry_date").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Ensure GormBudgetRepository implements BudgetRepository
var _ finance.BudgetRepository = (*GormBudgetRepository)(nil)
