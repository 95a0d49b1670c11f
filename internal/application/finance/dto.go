package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordBudgetEntryRequest represents a manual budget entry
type RecordBudgetEntryRequest struct {
	Type        finance.BudgetEntryType
	Amount      decimal.Decimal
	Description string
	EntryDate   time.Time
	ActorID     uuid.UUID
}

// BudgetEntryResponse represents a budget entry in API responses
type BudgetEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	EntryDate     time.Time       `json:"entry_date"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	ActorID       uuid.UUID       `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BudgetResponse reports the current budget
type BudgetResponse struct {
	Budget decimal.Decimal `json:"budget"`
}

// RecordBudgetEntryResponse carries the new entry and the budget after it
type RecordBudgetEntryResponse struct {
	Entry       BudgetEntryResponse `json:"entry"`
	BudgetAfter decimal.Decimal     `json:"budget_after"`
}

// ToBudgetEntryResponse converts a domain BudgetEntry to BudgetEntryResponse
func ToBudgetEntryResponse(e *finance.BudgetEntry) BudgetEntryResponse {
	return BudgetEntryResponse{
		ID:            e.ID,
		Type:          string(e.Type),
		Amount:        e.Amount,
		Description:   e.Description,
		EntryDate:     e.EntryDate,
		ReferenceKind: e.ReferenceKind,
		ReferenceID:   e.ReferenceID,
		ActorID:       e.ActorID,
		CreatedAt:     e.CreatedAt,
	}
}

// RecordPaymentRequest represents a payment received against an order
type RecordPaymentRequest struct {
	OrderID   uuid.UUID
	Amount    decimal.Decimal
	Method    finance.PaymentMethod
	Status    finance.PaymentStatus
	Reference string
	ActorID   uuid.UUID
}

// UpdatePaymentRequest edits a payment. Nil fields are left unchanged;
// Complete settles a pending payment.
type UpdatePaymentRequest struct {
	Amount   *decimal.Decimal
	Method   *finance.PaymentMethod
	Complete bool
	ActorID  uuid.UUID
}

// ReversePaymentRequest voids a payment
type ReversePaymentRequest struct {
	Reason  string
	ActorID uuid.UUID
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	PaymentDate    time.Time       `json:"payment_date"`
	Reference      string          `json:"reference,omitempty"`
	ReversedAt     *time.Time      `json:"reversed_at,omitempty"`
	ReversalReason string          `json:"reversal_reason,omitempty"`
	ActorID        uuid.UUID       `json:"actor_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderPaymentSummary is the order's payment position after a change
type OrderPaymentSummary struct {
	OrderID       uuid.UUID       `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus string          `json:"payment_status"`
}

// PaymentResult carries a payment and its order's new position
type PaymentResult struct {
	Payment PaymentResponse     `json:"payment"`
	Order   OrderPaymentSummary `json:"order"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Amount:         p.Amount,
		Method:         string(p.Method),
		Status:         string(p.Status),
		PaymentDate:    p.PaymentDate,
		Reference:      p.Reference,
		ReversedAt:     p.ReversedAt,
		ReversalReason: p.ReversalReason,
		ActorID:        p.ActorID,
		CreatedAt:      p.CreatedAt,
	}
}
