package handler

import (
	"github.com/erp/ledger/internal/application/inventory"
	domaininventory "github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles stock position, movement and alert endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *inventory.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventory.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// QuantityRequest is the body of reserve and release
type QuantityRequest struct {
	Quantity *decimal.Decimal `json:"quantity" binding:"required"`
}

// DeductRequest is the body of POST /inventory/:product_id/deduct
type DeductRequest struct {
	Quantity      *decimal.Decimal `json:"quantity" binding:"required"`
	Type          string           `json:"type" binding:"required,oneof=sale damage adjustment return"`
	ReferenceKind string           `json:"reference_kind" binding:"required,oneof=purchase order_item adjustment"`
	ReferenceID   string           `json:"reference_id" binding:"required,uuid"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	Notes         string           `json:"notes" binding:"max=500"`
}

// CreditRequest is the body of POST /inventory/:product_id/credit
type CreditRequest struct {
	Quantity      *decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost      *decimal.Decimal `json:"unit_cost" binding:"required"`
	Type          string           `json:"type" binding:"required,oneof=purchase return adjustment"`
	ReferenceKind string           `json:"reference_kind" binding:"required,oneof=purchase order_item adjustment"`
	ReferenceID   string           `json:"reference_id" binding:"required,uuid"`
	Notes         string           `json:"notes" binding:"max=500"`
}

// AdjustRequest is the body of POST /inventory/:product_id/adjust.
// Delta is signed; a negative value removes stock.
type AdjustRequest struct {
	Delta  *decimal.Decimal `json:"delta" binding:"required"`
	Type   string           `json:"type" binding:"omitempty,oneof=adjustment damage return"`
	Reason string           `json:"reason" binding:"required,min=1,max=500"`
}

// AvailabilityQuery holds the query of GET /inventory/:product_id/availability
type AvailabilityQuery struct {
	Quantity string `form:"quantity" binding:"required"`
}

// AvailabilityResponse reports whether a quantity can be reserved
type AvailabilityResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Requested  decimal.Decimal `json:"requested"`
	Available  decimal.Decimal `json:"available"`
	Sufficient bool            `json:"sufficient"`
}

// AlertListQuery holds the query of GET /alerts
type AlertListQuery struct {
	Page               int    `form:"page" binding:"omitempty,min=1"`
	PageSize           int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	ProductID          string `form:"product_id" binding:"omitempty,uuid"`
	UnacknowledgedOnly bool   `form:"unacknowledged_only"`
}

// Get handles GET /inventory/:product_id
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	record, err := h.stockService.GetInventory(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Reserve handles POST /inventory/:product_id/reserve
func (h *InventoryHandler) Reserve(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var req QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.stockService.Reserve(c.Request.Context(), inventory.ReserveStockRequest{
		ProductID: productID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Release handles POST /inventory/:product_id/release
func (h *InventoryHandler) Release(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var req QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.stockService.Release(c.Request.Context(), inventory.ReleaseStockRequest{
		ProductID: productID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Deduct handles POST /inventory/:product_id/deduct
func (h *InventoryHandler) Deduct(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var req DeductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.stockService.Deduct(c.Request.Context(), inventory.DeductStockRequest{
		ProductID:     productID,
		Quantity:      *req.Quantity,
		Type:          domaininventory.MovementType(req.Type),
		ReferenceKind: domaininventory.ReferenceKind(req.ReferenceKind),
		ReferenceID:   uuid.MustParse(req.ReferenceID),
		UnitCost:      req.UnitCost,
		Notes:         req.Notes,
		ActorID:       h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Credit handles POST /inventory/:product_id/credit
func (h *InventoryHandler) Credit(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var req CreditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.stockService.Credit(c.Request.Context(), inventory.CreditStockRequest{
		ProductID:     productID,
		Quantity:      *req.Quantity,
		UnitCost:      *req.UnitCost,
		Type:          domaininventory.MovementType(req.Type),
		ReferenceKind: domaininventory.ReferenceKind(req.ReferenceKind),
		ReferenceID:   uuid.MustParse(req.ReferenceID),
		Notes:         req.Notes,
		ActorID:       h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Adjust handles POST /inventory/:product_id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var req AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.stockService.Adjust(c.Request.Context(), inventory.AdjustStockRequest{
		ProductID: productID,
		Delta:     *req.Delta,
		Type:      domaininventory.MovementType(req.Type),
		Reason:    req.Reason,
		ActorID:   h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Movements handles GET /inventory/:product_id/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = q.Page
	filter.PageSize = q.PageSize
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, movements, total, q.Page, q.PageSize)
}

// EvaluateAlerts handles POST /inventory/:product_id/alerts/evaluate.
// The data is null when the stock level needs no alert.
func (h *InventoryHandler) EvaluateAlerts(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	alert, err := h.stockService.EvaluateAlerts(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}

// Availability handles GET /inventory/:product_id/availability
func (h *InventoryHandler) Availability(c *gin.Context) {
	productID, ok := h.PathID(c, "product_id")
	if !ok {
		return
	}
	var q AvailabilityQuery
	if !h.BindQuery(c, &q) {
		return
	}
	qty, err := decimal.NewFromString(q.Quantity)
	if err != nil {
		h.BadRequest(c, "quantity must be a decimal number")
		return
	}

	sufficient, available, err := h.stockService.CheckAvailability(c.Request.Context(), productID, qty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AvailabilityResponse{
		ProductID:  productID,
		Requested:  qty,
		Available:  available,
		Sufficient: sufficient,
	})
}

// ListAlerts handles GET /alerts
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	var q AlertListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	productID, err := parseOptionalID(q.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = dto.DefaultPageSize
	}

	alerts, total, err := h.stockService.ListAlerts(c.Request.Context(), inventory.AlertListFilter{
		ProductID:          productID,
		UnacknowledgedOnly: q.UnacknowledgedOnly,
		Page:               q.Page,
		PageSize:           q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, alerts, total, q.Page, q.PageSize)
}

// AcknowledgeAlert handles POST /alerts/:id/acknowledge
func (h *InventoryHandler) AcknowledgeAlert(c *gin.Context) {
	alertID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	alert, err := h.stockService.AcknowledgeAlert(c.Request.Context(), alertID, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}
