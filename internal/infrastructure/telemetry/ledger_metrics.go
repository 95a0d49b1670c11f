package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Payment outcomes recorded on ledger_payments_total
const (
	PaymentOutcomeRecorded = "recorded"
	PaymentOutcomeReversed = "reversed"
)

var minorUnits = decimal.NewFromInt(100)

// InventoryMetricsProvider reads the inventory aggregates behind the gauges
type InventoryMetricsProvider interface {
	ReservedQuantity(ctx context.Context) (decimal.Decimal, error)
	OpenAlertCounts(ctx context.Context) (map[string]int64, error)
}

// LedgerMetricsConfig configures NewLedgerMetrics
type LedgerMetricsConfig struct {
	Meter     metric.Meter
	Logger    *zap.Logger
	Inventory InventoryMetricsProvider
}

// LedgerMetrics holds the business instruments of the ledger. Amounts are
// recorded in minor units (cents).
type LedgerMetrics struct {
	ordersCreated      *Counter
	orderAmount        *Counter
	payments           *Counter
	paymentAmount      *Counter
	alertsRaised       *Counter
	purchasesCompleted *Counter
	reservedQuantity   *FloatGauge
	openAlerts         *Gauge

	inventory InventoryMetricsProvider
	logger    *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewLedgerMetrics registers the ledger instruments on cfg.Meter
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	lm := &LedgerMetrics{
		inventory: cfg.Inventory,
		logger:    cfg.Logger,
		stopCh:    make(chan struct{}),
	}

	var err error
	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&lm.ordersCreated, "ledger_orders_created_total", "Orders created", "{order}"},
		{&lm.orderAmount, "ledger_order_amount_total", "Grand total of created orders in minor units", "{cent}"},
		{&lm.payments, "ledger_payments_total", "Payments recorded or reversed", "{payment}"},
		{&lm.paymentAmount, "ledger_payment_amount_total", "Recorded payment amounts in minor units", "{cent}"},
		{&lm.alertsRaised, "ledger_stock_alerts_raised_total", "Stock alerts raised", "{alert}"},
		{&lm.purchasesCompleted, "ledger_purchases_completed_total", "Purchases received into stock", "{purchase}"},
	}
	for _, c := range counters {
		if *c.target, err = NewCounter(cfg.Meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}
	if lm.reservedQuantity, err = NewFloatGauge(cfg.Meter, "ledger_inventory_reserved_quantity", "Quantity held by pending orders", "{unit}"); err != nil {
		return nil, err
	}
	if lm.openAlerts, err = NewGauge(cfg.Meter, "ledger_inventory_open_alerts", "Unacknowledged stock alerts", "{alert}"); err != nil {
		return nil, err
	}
	return lm, nil
}

// RecordOrderCreated counts a new order and adds its grand total
func (lm *LedgerMetrics) RecordOrderCreated(ctx context.Context, fulfillment string, total decimal.Decimal) {
	attrs := attribute.String("fulfillment", fulfillment)
	lm.ordersCreated.Inc(ctx, attrs)
	lm.orderAmount.Add(ctx, toMinorUnits(total), attrs)
}

// RecordPayment counts a payment outcome. Only recorded payments add to the
// amount total.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, method, outcome string, amount decimal.Decimal) {
	lm.payments.Inc(ctx, attribute.String("method", method), attribute.String("outcome", outcome))
	if outcome == PaymentOutcomeRecorded {
		lm.paymentAmount.Add(ctx, toMinorUnits(amount), attribute.String("method", method))
	}
}

// RecordAlertRaised counts a raised stock alert
func (lm *LedgerMetrics) RecordAlertRaised(ctx context.Context, alertType string) {
	lm.alertsRaised.Inc(ctx, attribute.String("alert_type", alertType))
}

// RecordPurchaseCompleted counts a purchase received into stock
func (lm *LedgerMetrics) RecordPurchaseCompleted(ctx context.Context) {
	lm.purchasesCompleted.Inc(ctx)
}

// CollectInventory refreshes the inventory gauges once
func (lm *LedgerMetrics) CollectInventory(ctx context.Context) {
	if lm.inventory == nil {
		return
	}
	reserved, err := lm.inventory.ReservedQuantity(ctx)
	if err != nil {
		lm.logger.Warn("failed to read reserved quantity", zap.Error(err))
	} else {
		lm.reservedQuantity.Record(ctx, reserved.InexactFloat64())
	}

	counts, err := lm.inventory.OpenAlertCounts(ctx)
	if err != nil {
		lm.logger.Warn("failed to count open alerts", zap.Error(err))
		return
	}
	for alertType, n := range counts {
		lm.openAlerts.Record(ctx, n, attribute.String("alert_type", alertType))
	}
}

// StartPeriodicCollection refreshes the inventory gauges every interval
// until ctx ends or Stop is called
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if lm.inventory == nil || interval <= 0 {
		return
	}
	lm.wg.Add(1)
	go func() {
		defer lm.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lm.CollectInventory(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-lm.stopCh:
				return
			case <-ticker.C:
				lm.CollectInventory(ctx)
			}
		}
	}()
	lm.logger.Info("inventory metrics collection started", zap.Duration("interval", interval))
}

// Stop ends periodic collection and waits for the collector to exit
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() { close(lm.stopCh) })
	lm.wg.Wait()
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnits).Round(0).IntPart()
}

// ErrMeterNil is returned by NewLedgerMetrics without a meter
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError is an instrument setup failure
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
