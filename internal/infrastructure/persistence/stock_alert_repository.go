package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockAlertRepository implements StockAlertRepository using GORM
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormStockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAlert, error) {
	var alert inventory.StockAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &alert, nil
}

// FindAll lists alerts matching the filter
func (r *GormStockAlertRepository) FindAll(ctx context.Context, filter inventory.AlertFilter) ([]inventory.StockAlert, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockAlert{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UnacknowledgedOnly {
		query = query.Where("acknowledged = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []inventory.StockAlert
	if err := applyPaging(query, filter.Filter, StockAlertSortFields, "created_at").Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// DeleteUnacknowledged removes a product's open alerts and returns how many went
func (r *GormStockAlertRepository) DeleteUnacknowledged(ctx context.Context, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND acknowledged = ?", productID, false).
		Delete(&inventory.StockAlert{})
	return result.RowsAffected, result.Error
}

// Create inserts a new alert
func (r *GormStockAlertRepository) Create(ctx context.Context, alert *inventory.StockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// Save updates an existing alert
func (r *GormStockAlertRepository) Save(ctx context.Context, alert *inventory.StockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// Ensure GormStockAlertRepository implements StockAlertRepository
var _ inventory.StockAlertRepository = (*GormStockAlertRepository)(nil)
