package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePayment     = "Payment"
	AggregateTypeBudgetEntry = "BudgetEntry"
)

// Event type constants
const (
	EventTypePaymentRecorded     = "PaymentRecorded"
	EventTypePaymentReversed     = "PaymentReversed"
	EventTypeBudgetEntryRecorded = "BudgetEntryRecorded"
)

// PaymentRecordedEvent is raised when a payment is taken against an order
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Status    PaymentStatus   `json:"status"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment, at time.Time) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, at),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          p.Status,
	}
}

// PaymentReversedEvent is raised when a payment is voided
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

// NewPaymentReversedEvent creates a PaymentReversedEvent
func NewPaymentReversedEvent(p *Payment, at time.Time) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReversed, AggregateTypePayment, p.ID, at),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Reason:          p.ReversalReason,
	}
}

// BudgetEntryRecordedEvent is raised for every budget ledger append
type BudgetEntryRecordedEvent struct {
	shared.BaseDomainEvent
	EntryType     BudgetEntryType `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	BudgetAfter   decimal.Decimal `json:"budget_after"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
}

// NewBudgetEntryRecordedEvent creates a BudgetEntryRecordedEvent
func NewBudgetEntryRecordedEvent(e *BudgetEntry, budgetAfter decimal.Decimal) *BudgetEntryRecordedEvent {
	return &BudgetEntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetEntryRecorded, AggregateTypeBudgetEntry, e.ID, e.CreatedAt),
		EntryType:       e.Type,
		Amount:          e.Amount,
		BudgetAfter:     budgetAfter,
		ReferenceKind:   e.ReferenceKind,
	}
}
