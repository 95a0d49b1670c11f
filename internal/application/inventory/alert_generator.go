package inventory

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertGenerator replaces a product's open stock alert with one matching its
// current level. It deletes the unacknowledged alerts and then inserts the
// new one, both under the product's inventory row lock.
type AlertGenerator struct {
	clock   shared.Clock
	metrics *telemetry.LedgerMetrics
}

// NewAlertGenerator creates an AlertGenerator
func NewAlertGenerator(clock shared.Clock) *AlertGenerator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &AlertGenerator{clock: clock}
}

// SetMetrics counts raised alerts on metrics once their unit of work commits
func (g *AlertGenerator) SetMetrics(metrics *telemetry.LedgerMetrics) {
	g.metrics = metrics
}

// Evaluate re-evaluates alerts for productID and returns the new alert, if any
func (g *AlertGenerator) Evaluate(ctx context.Context, repos uow.Repositories, productID uuid.UUID, events *uow.EventCollector) (*inventory.StockAlert, error) {
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	quantity := decimal.Zero
	record, err := repos.Inventory().FindByProductForUpdate(ctx, productID)
	switch {
	case err == nil:
		quantity = record.Quantity
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if _, err := repos.Alerts().DeleteUnacknowledged(ctx, productID); err != nil {
		return nil, err
	}

	alert := inventory.EvaluateStockLevel(productID, quantity, product.LowStockThreshold, g.clock.Now())
	if alert == nil {
		return nil, nil
	}
	if err := repos.Alerts().Create(ctx, alert); err != nil {
		return nil, err
	}
	events.Add(inventory.NewStockAlertRaisedEvent(alert))
	if g.metrics != nil {
		alertType := string(alert.AlertType)
		events.AfterCommit(func(ctx context.Context) {
			g.metrics.RecordAlertRaised(ctx, alertType)
		})
	}
	return alert, nil
}
