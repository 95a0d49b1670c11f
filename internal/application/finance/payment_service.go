package finance

import (
	"context"

	apppartner "github.com/erp/ledger/internal/application/partner"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records and reconciles payments against orders. The
// order's amount paid is always recomputed from its completed payments,
// never incremented in place.
type PaymentService struct {
	txScope        uow.TransactionScope
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope uow.TransactionScope, clock shared.Clock, logger *zap.Logger) *PaymentService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{txScope: txScope, clock: clock, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics records payment outcomes on metrics
func (s *PaymentService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// Record records a payment on an order. It fails with ErrInvalidState on a
// cancelled or fully paid order and with ErrAmountExceedsBalance when amount
// is more than the outstanding balance.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	var events uow.EventCollector
	var result PaymentResult
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if err := order.EnsureAcceptsPayment(req.Amount); err != nil {
			return err
		}

		now := s.clock.Now()
		payment, err := finance.NewPayment(order.ID, req.Amount, req.Method, req.Status, req.ActorID, now)
		if err != nil {
			return err
		}
		payment.Reference = req.Reference
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}

		if err := s.reconcile(ctx, repos, order); err != nil {
			return err
		}
		events.Collect(payment, order)
		result = PaymentResult{Payment: ToPaymentResponse(payment), Order: toOrderPaymentSummary(order)}
		return nil
	})
	if err != nil {
		s.logRejected("record payment", req.OrderID, err)
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("order_id", req.OrderID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("payment_status", result.Order.PaymentStatus),
		zap.String("actor_id", req.ActorID.String()))
	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, string(req.Method), telemetry.PaymentOutcomeRecorded, req.Amount)
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &result, nil
}

// Update edits a payment that has not been reversed and re-checks the
// order's outstanding balance against its other completed payments
func (s *PaymentService) Update(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResult, error) {
	var events uow.EventCollector
	var result PaymentResult
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		order, err := repos.Orders().FindByIDForUpdate(ctx, payment.OrderID)
		if err != nil {
			return err
		}

		paidByOthers, err := repos.Payments().SumCompletedByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if payment.Counts() {
			paidByOthers = paidByOthers.Sub(payment.Amount)
		}

		now := s.clock.Now()
		amount, method := payment.Amount, payment.Method
		if req.Amount != nil {
			amount = *req.Amount
		}
		if req.Method != nil {
			method = *req.Method
		}
		if err := payment.Update(amount, method, now); err != nil {
			return err
		}
		if req.Complete {
			if err := payment.Complete(now); err != nil {
				return err
			}
		}

		if payment.Counts() {
			if order.Status == trade.OrderStatusCancelled {
				return shared.NewDomainError(shared.CodeInvalidState, "Cannot apply payment to a cancelled order")
			}
			if payment.Amount.GreaterThan(order.TotalAmount.Sub(paidByOthers)) {
				return shared.NewDomainError(shared.CodeAmountExceedsBalance,
					"Amount "+payment.Amount.StringFixed(2)+" exceeds outstanding balance "+order.TotalAmount.Sub(paidByOthers).StringFixed(2))
			}
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := s.reconcile(ctx, repos, order); err != nil {
			return err
		}
		events.Collect(payment, order)
		result = PaymentResult{Payment: ToPaymentResponse(payment), Order: toOrderPaymentSummary(order)}
		return nil
	})
	if err != nil {
		s.logRejected("update payment", paymentID, err)
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher, s.logger)
	return &result, nil
}

// Reverse voids a payment and recomputes its order's amount paid
func (s *PaymentService) Reverse(ctx context.Context, paymentID uuid.UUID, req ReversePaymentRequest) (*PaymentResult, error) {
	var events uow.EventCollector
	var result PaymentResult
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		order, err := repos.Orders().FindByIDForUpdate(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if err := payment.Reverse(req.Reason, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := s.reconcile(ctx, repos, order); err != nil {
			return err
		}
		events.Collect(payment, order)
		result = PaymentResult{Payment: ToPaymentResponse(payment), Order: toOrderPaymentSummary(order)}
		return nil
	})
	if err != nil {
		s.logRejected("reverse payment", paymentID, err)
		return nil, err
	}

	s.logger.Info("payment reversed",
		zap.String("payment_id", paymentID.String()),
		zap.String("order_id", result.Order.OrderID.String()),
		zap.String("actor_id", req.ActorID.String()))
	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, result.Payment.Method, telemetry.PaymentOutcomeReversed, result.Payment.Amount)
	}
	events.Publish(ctx, s.eventPublisher, s.logger)
	return &result, nil
}

// Delete removes a pending or reversed payment
func (s *PaymentService) Delete(ctx context.Context, paymentID, actorID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		order, err := repos.Orders().FindByIDForUpdate(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if err := payment.CanDelete(); err != nil {
			return err
		}
		if err := repos.Payments().Delete(ctx, paymentID); err != nil {
			return err
		}
		return s.reconcile(ctx, repos, order)
	})
	if err != nil {
		s.logRejected("delete payment", paymentID, err)
		return err
	}

	s.logger.Info("payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("actor_id", actorID.String()))
	return nil
}

// ListByOrder lists an order's payments, oldest first
func (s *PaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	var payments []finance.Payment
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Orders().FindByID(ctx, orderID); err != nil {
			return err
		}
		var err error
		payments, err = repos.Payments().FindByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

// Recompute re-derives an order's amount paid from its completed payments
func (s *PaymentService) Recompute(ctx context.Context, orderID uuid.UUID) (*OrderPaymentSummary, error) {
	var summary OrderPaymentSummary
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.reconcile(ctx, repos, order); err != nil {
			return err
		}
		summary = toOrderPaymentSummary(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// reconcile sets the order's amount paid to the sum of its completed
// payments, credits the customer if the order just became due, and saves it
func (s *PaymentService) reconcile(ctx context.Context, repos uow.Repositories, order *trade.Order) error {
	paid, err := repos.Payments().SumCompletedByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	order.ApplyAmountPaid(paid, now)
	if _, err := apppartner.CreditCustomerIfDue(ctx, repos, order, now); err != nil {
		return err
	}
	return repos.Orders().Save(ctx, order)
}

func (s *PaymentService) logRejected(action string, id uuid.UUID, err error) {
	if _, ok := shared.IsDomainError(err); ok {
		s.logger.Info(action+" rejected", zap.String("id", id.String()), zap.Error(err))
		return
	}
	s.logger.Error(action+" failed", zap.String("id", id.String()), zap.Error(err))
}

func toOrderPaymentSummary(o *trade.Order) OrderPaymentSummary {
	return OrderPaymentSummary{
		OrderID:       o.ID,
		TotalAmount:   o.TotalAmount,
		AmountPaid:    o.AmountPaid,
		Outstanding:   o.Outstanding(),
		PaymentStatus: string(o.PaymentStatus),
	}
}
