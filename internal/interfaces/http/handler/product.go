package handler

import (
	"github.com/erp/ledger/internal/application/catalog"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest is the body of POST /products
type CreateProductRequest struct {
	Code              string           `json:"code" binding:"required,min=1,max=50"`
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	Description       string           `json:"description" binding:"max=2000"`
	Unit              string           `json:"unit" binding:"required,min=1,max=20"`
	BuyingPrice       *decimal.Decimal `json:"buying_price" binding:"required"`
	SellingPrice      *decimal.Decimal `json:"selling_price" binding:"required"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
}

// UpdateProductRequest is the body of PATCH /products/:id
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=2000"`
	Unit              *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	BuyingPrice       *decimal.Decimal `json:"buying_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	Active            *bool            `json:"active"`
}

// ProductListQuery holds the query parameters of GET /products
type ProductListQuery struct {
	dto.ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	appReq := catalog.CreateProductRequest{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Unit:         req.Unit,
		BuyingPrice:  *req.BuyingPrice,
		SellingPrice: *req.SellingPrice,
		ActorID:      h.Actor(c),
	}
	if req.LowStockThreshold != nil {
		appReq.LowStockThreshold = *req.LowStockThreshold
	}

	product, err := h.productService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetByCode handles GET /products/code/:code
func (h *ProductHandler) GetByCode(c *gin.Context) {
	product, err := h.productService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Normalize()

	products, total, err := h.productService.List(c.Request.Context(), catalog.ProductListFilter{
		Search:   q.Search,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, products, total, q.Page, q.PageSize)
}

// Update handles PATCH /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, catalog.UpdateProductRequest{
		Name:              req.Name,
		Description:       req.Description,
		Unit:              req.Unit,
		BuyingPrice:       req.BuyingPrice,
		SellingPrice:      req.SellingPrice,
		LowStockThreshold: req.LowStockThreshold,
		Active:            req.Active,
		ActorID:           h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
