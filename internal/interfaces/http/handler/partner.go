package handler

import (
	"github.com/erp/ledger/internal/application/partner"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PartnerHandler handles supplier and customer endpoints
type PartnerHandler struct {
	BaseHandler
	supplierService *partner.SupplierService
	customerService *partner.CustomerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(supplierService *partner.SupplierService, customerService *partner.CustomerService) *PartnerHandler {
	return &PartnerHandler{supplierService: supplierService, customerService: customerService}
}

// CreateSupplierRequest is the body of POST /suppliers
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address" binding:"max=500"`
	Notes       string `json:"notes" binding:"max=2000"`
}

// CreateCustomerRequest is the body of POST /customers
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// CreateSupplier handles POST /suppliers
func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), partner.CreateSupplierRequest{
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		Notes:       req.Notes,
		ActorID:     h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetSupplier handles GET /suppliers/:id
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// ListSuppliers handles GET /suppliers
func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Normalize()

	suppliers, total, err := h.supplierService.List(c.Request.Context(), partner.PartnerListFilter{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, suppliers, total, q.Page, q.PageSize)
}

// CreateCustomer handles POST /customers
func (h *PartnerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), partner.CreateCustomerRequest{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
		ActorID: h.Actor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetCustomer handles GET /customers/:id
func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// ListCustomers handles GET /customers
func (h *PartnerHandler) ListCustomers(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Normalize()

	customers, total, err := h.customerService.List(c.Request.Context(), partner.PartnerListFilter{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, customers, total, q.Page, q.PageSize)
}
