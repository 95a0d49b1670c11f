package inventory

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertNotifier delivers raised alerts to people.
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	Notify(ctx context.Context, alert *inventory.StockAlertRaisedEvent) error
}

// LogNotifier writes alerts to the application log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the alert at warn level
func (n *LogNotifier) Notify(_ context.Context, alert *inventory.StockAlertRaisedEvent) error {
	n.logger.Warn("stock alert raised",
		zap.String("alert_id", alert.AlertID.String()),
		zap.String("product_id", alert.ProductID.String()),
		zap.String("alert_type", string(alert.AlertType)),
		zap.String("current_quantity", alert.CurrentQuantity.String()),
		zap.String("threshold", alert.Threshold.String()))
	return nil
}

// StockAlertRaisedHandler forwards StockAlertRaised events to a notifier
type StockAlertRaisedHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockAlertRaisedHandler creates a new handler for raised stock alerts
func NewStockAlertRaisedHandler(logger *zap.Logger, notifier StockAlertNotifier) *StockAlertRaisedHandler {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &StockAlertRaisedHandler{logger: logger, notifier: notifier}
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertRaisedHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockAlertRaised}
}

// Handle processes a StockAlertRaised event
func (h *StockAlertRaisedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	raised, ok := event.(*inventory.StockAlertRaisedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}
	if err := h.notifier.Notify(ctx, raised); err != nil {
		h.logger.Error("failed to deliver stock alert",
			zap.String("alert_id", raised.AlertID.String()),
			zap.Error(err))
		return err
	}
	return nil
}
