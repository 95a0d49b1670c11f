package handler

import (
	"time"

	"github.com/erp/ledger/internal/application/finance"
	domainfinance "github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// FinanceHandler handles budget and payment endpoints
type FinanceHandler struct {
	BaseHandler
	budgetService  *finance.BudgetService
	paymentService *finance.PaymentService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(budgetService *finance.BudgetService, paymentService *finance.PaymentService) *FinanceHandler {
	return &FinanceHandler{budgetService: budgetService, paymentService: paymentService}
}

// RecordBudgetEntryRequest is the body of POST /budget/entries
type RecordBudgetEntryRequest struct {
	Type        string           `json:"type" binding:"required,oneof=initial addition deduction adjustment"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Description string           `json:"description" binding:"max=500"`
	EntryDate   *time.Time       `json:"entry_date"`
}

// RecordPaymentRequest is the body of POST /orders/:id/payments
type RecordPaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Method    string           `json:"method" binding:"required,oneof=cash bank_transfer mobile_money card other"`
	Status    string           `json:"status" binding:"omitempty,oneof=pending completed"`
	Reference string           `json:"reference" binding:"max=100"`
}

// UpdatePaymentRequest is the body of PATCH /payments/:id
type UpdatePaymentRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Method   *string          `json:"method" binding:"omitempty,oneof=cash bank_transfer mobile_money card other"`
	Complete bool             `json:"complete"`
}

// ReversePaymentRequest is the body of POST /payments/:id/reverse
type ReversePaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// GetBudget handles GET /budget
func (h *FinanceHandler) GetBudget(c *gin.Context) {
	budget, err := h.budgetService.CurrentBudget(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, finance.BudgetResponse{Budget: budget})
}

// ListBudgetEntries handles GET /budget/entries
func (h *FinanceHandler) ListBudgetEntries(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Normalize()

	entries, total, err := h.budgetService.ListEntries(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, entries, total, q.Page, q.PageSize)
}

// RecordBudgetEntry handles POST /budget/entries
func (h *FinanceHandler) RecordBudgetEntry(c *gin.Context) {
	var req RecordBudgetEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	appReq := finance.RecordBudgetEntryRequest{
		Type:        domainfinance.BudgetEntryType(req.Type),
		Amount:      *req.Amount,
		Description: req.Description,
		ActorID:     h.Actor(c),
	}
	if req.EntryDate != nil {
		appReq.EntryDate = *req.EntryDate
	}

	result, err := h.budgetService.RecordEntry(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordPayment handles POST /orders/:id/payments
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), finance.RecordPaymentRequest{
		OrderID:   orderID,
		Amount:    *req.Amount,
		Method:    domainfinance.PaymentMethod(req.Method),
		Status:    domainfinance.PaymentStatus(req.Status),
		Reference: req.Reference,
		ActorID:   h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListOrderPayments handles GET /orders/:id/payments
func (h *FinanceHandler) ListOrderPayments(c *gin.Context) {
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.paymentService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecomputePayments handles POST /orders/:id/payments/recompute
func (h *FinanceHandler) RecomputePayments(c *gin.Context) {
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.paymentService.Recompute(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// UpdatePayment handles PATCH /payments/:id
func (h *FinanceHandler) UpdatePayment(c *gin.Context) {
	paymentID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	appReq := finance.UpdatePaymentRequest{
		Amount:   req.Amount,
		Complete: req.Complete,
		ActorID:  h.Actor(c),
	}
	if req.Method != nil {
		method := domainfinance.PaymentMethod(*req.Method)
		appReq.Method = &method
	}

	result, err := h.paymentService.Update(c.Request.Context(), paymentID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReversePayment handles POST /payments/:id/reverse
func (h *FinanceHandler) ReversePayment(c *gin.Context) {
	paymentID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req ReversePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Reverse(c.Request.Context(), paymentID, finance.ReversePaymentRequest{
		Reason:  req.Reason,
		ActorID: h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeletePayment handles DELETE /payments/:id
func (h *FinanceHandler) DeletePayment(c *gin.Context) {
	paymentID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), paymentID, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
