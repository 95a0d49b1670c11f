package trade

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseFilter narrows purchase listings
type PurchaseFilter struct {
	shared.Filter
	Status     PurchaseStatus
	SupplierID *uuid.UUID
	ProductID  *uuid.UUID
}

// PurchaseRepository persists purchases
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	// FindByIDForUpdate row-locks the purchase for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindAll(ctx context.Context, filter PurchaseFilter) ([]Purchase, int64, error)
	Save(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status     OrderStatus
	CustomerID *uuid.UUID
}

// OrderRepository persists orders together with their items
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate row-locks the order for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByItemID finds the order owning a line
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// Save writes the order and makes its stored items match Items exactly
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
