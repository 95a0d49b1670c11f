package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/partner"
	"github.com/erp/ledger/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// budgetLockID is the id of the single row budget writers lock
const budgetLockID = 1

// BudgetLedgerLock is a one-row table budget writers take FOR UPDATE
// before reading the balance, so two debits cannot both pass the gate
type BudgetLedgerLock struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the table name for GORM
func (BudgetLedgerLock) TableName() string {
	return "budget_ledger_locks"
}

// Models returns every persisted ledger model in dependency order
func Models() []any {
	return []any{
		&catalog.Product{},
		&inventory.InventoryRecord{},
		&inventory.Movement{},
		&inventory.StockAlert{},
		&finance.BudgetEntry{},
		&BudgetLedgerLock{},
		&partner.Supplier{},
		&partner.Customer{},
		&trade.Purchase{},
		&trade.Order{},
		&trade.OrderItem{},
		&finance.Payment{},
	}
}

// AutoMigrate creates or updates the ledger tables and seeds the budget
// lock row. Production deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return ensureBudgetLock(db)
}

func ensureBudgetLock(db *gorm.DB) error {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&BudgetLedgerLock{ID: budgetLockID}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to seed budget lock: %w", err)
	}
	return nil
}
