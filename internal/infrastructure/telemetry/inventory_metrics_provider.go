package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInventoryMetricsProvider aggregates inventory_records and stock_alerts
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a GormInventoryMetricsProvider
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// ReservedQuantity sums reserved_quantity over every record
func (p *GormInventoryMetricsProvider) ReservedQuantity(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := p.db.WithContext(ctx).
		Table("inventory_records").
		Select("SUM(reserved_quantity)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// OpenAlertCounts counts unacknowledged alerts per alert type
func (p *GormInventoryMetricsProvider) OpenAlertCounts(ctx context.Context) (map[string]int64, error) {
	type row struct {
		AlertType string `gorm:"column:alert_type"`
		Count     int64  `gorm:"column:count"`
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("stock_alerts").
		Select("alert_type, COUNT(*) AS count").
		Where("acknowledged = ?", false).
		Group("alert_type").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.AlertType] = r.Count
	}
	return counts, nil
}
