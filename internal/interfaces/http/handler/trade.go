package handler

import (
	"time"

	"github.com/erp/ledger/internal/application/trade"
	domaintrade "github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeHandler handles purchase and order endpoints
type TradeHandler struct {
	BaseHandler
	purchaseService *trade.PurchaseService
	orderService    *trade.OrderService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(purchaseService *trade.PurchaseService, orderService *trade.OrderService) *TradeHandler {
	return &TradeHandler{purchaseService: purchaseService, orderService: orderService}
}

// PurchaseTermsRequest holds the quantity and cost terms of a purchase
type PurchaseTermsRequest struct {
	Quantity      *decimal.Decimal `json:"quantity" binding:"required"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit" binding:"required"`
	PackagingCost *decimal.Decimal `json:"packaging_cost"`
	TransportCost *decimal.Decimal `json:"transport_cost"`
	OtherCost     *decimal.Decimal `json:"other_cost"`
	Notes         string           `json:"notes" binding:"max=2000"`
}

// CreatePurchaseRequest is the body of POST /purchases
type CreatePurchaseRequest struct {
	SupplierID   string     `json:"supplier_id" binding:"required,uuid"`
	ProductID    string     `json:"product_id" binding:"required,uuid"`
	PurchaseDate *time.Time `json:"purchase_date"`
	PurchaseTermsRequest
}

// CancelRequest is the body of the cancel endpoints
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseListQuery holds the query of GET /purchases
type PurchaseListQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
}

// OrderItemRequest is one line of an order
type OrderItemRequest struct {
	ProductID string           `json:"product_id" binding:"required,uuid"`
	Quantity  *decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	CustomerID      string             `json:"customer_id" binding:"required,uuid"`
	FulfillmentType string             `json:"fulfillment_type" binding:"required,oneof=pickup delivery"`
	DeliveryAddress string             `json:"delivery_address" binding:"max=500"`
	DiscountAmount  *decimal.Decimal   `json:"discount_amount"`
	DeliveryFee     *decimal.Decimal   `json:"delivery_fee"`
	Notes           string             `json:"notes" binding:"max=2000"`
	Items           []OrderItemRequest `json:"items" binding:"dive"`
}

// UpdateOrderItemRequest is the body of PATCH /orders/:id/items/:item_id
type UpdateOrderItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// SetChargesRequest is the body of PUT /orders/:id/charges
type SetChargesRequest struct {
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	DeliveryFee    *decimal.Decimal `json:"delivery_fee"`
}

// TransitionRequest is the body of POST /orders/:id/transition
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing ready shipped delivered cancelled"`
	Reason string `json:"reason" binding:"max=500"`
}

// OrderListQuery holds the query of GET /orders
type OrderListQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed processing ready shipped delivered cancelled"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func pageDefaults(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = dto.DefaultPageSize
	}
}

func (r OrderItemRequest) toInput() trade.OrderItemInput {
	return trade.OrderItemInput{
		ProductID: uuid.MustParse(r.ProductID),
		Quantity:  *r.Quantity,
		UnitPrice: r.UnitPrice,
	}
}

// CreatePurchase handles POST /purchases
func (h *TradeHandler) CreatePurchase(c *gin.Context) {
	var req CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	appReq := trade.CreatePurchaseRequest{
		SupplierID:    uuid.MustParse(req.SupplierID),
		ProductID:     uuid.MustParse(req.ProductID),
		Quantity:      *req.Quantity,
		PricePerUnit:  *req.PricePerUnit,
		PackagingCost: orZero(req.PackagingCost),
		TransportCost: orZero(req.TransportCost),
		OtherCost:     orZero(req.OtherCost),
		Notes:         req.Notes,
		ActorID:       h.Actor(c),
	}
	if req.PurchaseDate != nil {
		appReq.PurchaseDate = *req.PurchaseDate
	}

	purchase, err := h.purchaseService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// GetPurchase handles GET /purchases/:id
func (h *TradeHandler) GetPurchase(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// ListPurchases handles GET /purchases
func (h *TradeHandler) ListPurchases(c *gin.Context) {
	var q PurchaseListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	pageDefaults(&q.Page, &q.PageSize)
	supplierID, err := parseOptionalID(q.SupplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, err := parseOptionalID(q.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	purchases, total, err := h.purchaseService.List(c.Request.Context(), trade.PurchaseListFilter{
		Status:     q.Status,
		SupplierID: supplierID,
		ProductID:  productID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, purchases, total, q.Page, q.PageSize)
}

// UpdatePurchase handles PUT /purchases/:id
func (h *TradeHandler) UpdatePurchase(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req PurchaseTermsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	purchase, err := h.purchaseService.Update(c.Request.Context(), id, trade.UpdatePurchaseRequest{
		Quantity:      *req.Quantity,
		PricePerUnit:  *req.PricePerUnit,
		PackagingCost: orZero(req.PackagingCost),
		TransportCost: orZero(req.TransportCost),
		OtherCost:     orZero(req.OtherCost),
		Notes:         req.Notes,
		ActorID:       h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// CompletePurchase handles POST /purchases/:id/complete
func (h *TradeHandler) CompletePurchase(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.Complete(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// CancelPurchase handles POST /purchases/:id/cancel
func (h *TradeHandler) CancelPurchase(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	purchase, err := h.purchaseService.Cancel(c.Request.Context(), id, req.Reason, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// DeletePurchase handles DELETE /purchases/:id
func (h *TradeHandler) DeletePurchase(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.purchaseService.Delete(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateOrder handles POST /orders
func (h *TradeHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	items := make([]trade.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.toInput())
	}

	order, err := h.orderService.Create(c.Request.Context(), trade.CreateOrderRequest{
		CustomerID:      uuid.MustParse(req.CustomerID),
		FulfillmentType: domaintrade.FulfillmentType(req.FulfillmentType),
		DeliveryAddress: req.DeliveryAddress,
		DiscountAmount:  orZero(req.DiscountAmount),
		DeliveryFee:     orZero(req.DeliveryFee),
		Notes:           req.Notes,
		Items:           items,
		ActorID:         h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetOrder handles GET /orders/:id
func (h *TradeHandler) GetOrder(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListOrders handles GET /orders
func (h *TradeHandler) ListOrders(c *gin.Context) {
	var q OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	pageDefaults(&q.Page, &q.PageSize)
	customerID, err := parseOptionalID(q.CustomerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), trade.OrderListFilter{
		Status:     q.Status,
		CustomerID: customerID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, orders, total, q.Page, q.PageSize)
}

// AddOrderItem handles POST /orders/:id/items
func (h *TradeHandler) AddOrderItem(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req OrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.AddItem(c.Request.Context(), id, trade.AddOrderItemRequest{
		OrderItemInput: req.toInput(),
		ActorID:        h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateOrderItem handles PATCH /orders/:id/items/:item_id
func (h *TradeHandler) UpdateOrderItem(c *gin.Context) {
	if _, ok := h.PathID(c, "id"); !ok {
		return
	}
	itemID, ok := h.PathID(c, "item_id")
	if !ok {
		return
	}
	var req UpdateOrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateItem(c.Request.Context(), itemID, trade.UpdateOrderItemRequest{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		ActorID:   h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveOrderItem handles DELETE /orders/:id/items/:item_id
func (h *TradeHandler) RemoveOrderItem(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathID(c, "item_id")
	if !ok {
		return
	}
	order, err := h.orderService.RemoveItem(c.Request.Context(), id, itemID, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// SetOrderCharges handles PUT /orders/:id/charges
func (h *TradeHandler) SetOrderCharges(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req SetChargesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.SetCharges(c.Request.Context(), id, trade.SetOrderChargesRequest{
		DiscountAmount: orZero(req.DiscountAmount),
		DeliveryFee:    orZero(req.DeliveryFee),
		ActorID:        h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// TransitionOrder handles POST /orders/:id/transition
func (h *TradeHandler) TransitionOrder(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Transition(c.Request.Context(), id, trade.TransitionOrderRequest{
		Status:  domaintrade.OrderStatus(req.Status),
		Reason:  req.Reason,
		ActorID: h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// DeleteOrder handles DELETE /orders/:id
func (h *TradeHandler) DeleteOrder(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
