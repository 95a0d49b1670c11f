package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryRecordRepository persists per-product stock positions
type InventoryRecordRepository interface {
	// FindByProduct loads a record without locking it
	FindByProduct(ctx context.Context, productID uuid.UUID) (*InventoryRecord, error)

	// FindByProductForUpdate loads a record and holds a row lock on it until
	// the surrounding transaction ends
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*InventoryRecord, error)

	// Create inserts a new record
	Create(ctx context.Context, record *InventoryRecord) error

	// Save persists a mutated record. It fails with ErrConcurrencyConflict
	// if the stored version is not the one the record was loaded at.
	Save(ctx context.Context, record *InventoryRecord) error

	// DeleteByProduct removes a product's record
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

// MovementRepository is the append-only stock ledger
type MovementRepository interface {
	// Append writes a new movement
	Append(ctx context.Context, movement *Movement) error

	// FindByProduct lists a product's movements, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Movement, int64, error)

	// FindByReference lists movements caused by a document
	FindByReference(ctx context.Context, ref Reference) ([]Movement, error)
}

// StockAlertRepository persists stock alerts
type StockAlertRepository interface {
	// FindByID finds an alert by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockAlert, error)

	// FindAll lists alerts matching the filter
	FindAll(ctx context.Context, filter AlertFilter) ([]StockAlert, int64, error)

	// DeleteUnacknowledged removes every open alert for a product
	DeleteUnacknowledged(ctx context.Context, productID uuid.UUID) (int64, error)

	// Create inserts a new alert
	Create(ctx context.Context, alert *StockAlert) error

	// Save updates an existing alert
	Save(ctx context.Context, alert *StockAlert) error
}
