package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the state of a single payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusReversed  PaymentStatus = "reversed"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusReversed:
		return true
	}
	return false
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received against an order. Only completed payments
// count toward the order's amount paid.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method         PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	PaymentDate    time.Time       `gorm:"not null"`
	Reference      string          `gorm:"type:varchar(100)"`
	ReversedAt     *time.Time
	ReversalReason string    `gorm:"type:varchar(500)"`
	ActorID        uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment in the given initial status (pending or completed)
func NewPayment(orderID uuid.UUID, amount decimal.Decimal, method PaymentMethod, status PaymentStatus, actorID uuid.UUID, at time.Time) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid payment method")
	}
	if status == "" {
		status = PaymentStatusCompleted
	}
	if status != PaymentStatusPending && status != PaymentStatusCompleted {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A new payment must be pending or completed")
	}

	payment := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(at),
		OrderID:           orderID,
		Amount:            amount,
		Method:            method,
		Status:            status,
		PaymentDate:       at,
		ActorID:           actorID,
	}
	payment.AddDomainEvent(NewPaymentRecordedEvent(payment, at))
	return payment, nil
}

// Counts reports whether the payment contributes to the order's amount paid
func (p *Payment) Counts() bool {
	return p.Status == PaymentStatusCompleted
}

// Update changes amount and method. Reversed payments are frozen.
func (p *Payment) Update(amount decimal.Decimal, method PaymentMethod, at time.Time) error {
	if p.Status == PaymentStatusReversed {
		return shared.NewDomainError(shared.CodeInvalidState, "Reversed payments cannot be edited")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid payment method")
	}
	p.Amount = amount
	p.Method = method
	p.Touch(at)
	p.IncrementVersion()
	return nil
}

// Complete settles a pending payment
func (p *Payment) Complete(at time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, "Only pending payments can be completed")
	}
	p.Status = PaymentStatusCompleted
	p.Touch(at)
	p.IncrementVersion()
	return nil
}

// Reverse voids the payment so it no longer counts toward the order
func (p *Payment) Reverse(reason string, at time.Time) error {
	if p.Status == PaymentStatusReversed {
		return shared.NewDomainError(shared.CodeInvalidState, "Payment is already reversed")
	}
	p.Status = PaymentStatusReversed
	p.ReversedAt = &at
	p.ReversalReason = reason
	p.Touch(at)
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentReversedEvent(p, at))
	return nil
}

// CanDelete returns an error if the payment still counts toward the order
func (p *Payment) CanDelete() error {
	if p.Status == PaymentStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Completed payments must be reversed before deletion")
	}
	return nil
}
