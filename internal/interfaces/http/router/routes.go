package router

import (
	"github.com/erp/ledger/internal/application"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the HTTP engine
type Options struct {
	Logger      *zap.Logger
	MaxBodySize int64
	Version     string
	Mode        string
	Tracing     middleware.TracingConfig
}

// New builds the gin engine serving the ledger API
func New(services *application.Services, db handler.Pinger, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.Tracing(opts.Tracing)...)
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
	)
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	system := handler.NewSystemHandler(db, opts.Version)
	engine.GET("/health", system.Health)

	engine.Use(middleware.Actor())

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(
		systemRoutes(system),
		productRoutes(handler.NewProductHandler(services.Products)),
	)
	inventoryHandler := handler.NewInventoryHandler(services.Stock)
	r.Register(inventoryRoutes(inventoryHandler), alertRoutes(inventoryHandler))

	financeHandler := handler.NewFinanceHandler(services.Budget, services.Payments)
	r.Register(budgetRoutes(financeHandler), paymentRoutes(financeHandler))

	partnerHandler := handler.NewPartnerHandler(services.Suppliers, services.Customers)
	r.Register(supplierRoutes(partnerHandler), customerRoutes(partnerHandler))

	tradeHandler := handler.NewTradeHandler(services.Purchases, services.Orders)
	r.Register(purchaseRoutes(tradeHandler), orderRoutes(tradeHandler, financeHandler))

	r.Setup()
	return engine
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/ping", h.Ping)
}

func productRoutes(h *handler.ProductHandler) *DomainGroup {
	return NewDomainGroup("products", "/products").
		POST("", h.Create).
		GET("", h.List).
		GET("/code/:code", h.GetByCode).
		GET("/:id", h.Get).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

func inventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	return NewDomainGroup("inventory", "/inventory").
		GET("/:product_id", h.Get).
		POST("/:product_id/reserve", h.Reserve).
		POST("/:product_id/release", h.Release).
		POST("/:product_id/deduct", h.Deduct).
		POST("/:product_id/credit", h.Credit).
		POST("/:product_id/adjust", h.Adjust).
		GET("/:product_id/movements", h.Movements).
		GET("/:product_id/availability", h.Availability).
		POST("/:product_id/alerts/evaluate", h.EvaluateAlerts)
}

func alertRoutes(h *handler.InventoryHandler) *DomainGroup {
	return NewDomainGroup("alerts", "/alerts").
		GET("", h.ListAlerts).
		POST("/:id/acknowledge", h.AcknowledgeAlert)
}

func budgetRoutes(h *handler.FinanceHandler) *DomainGroup {
	return NewDomainGroup("budget", "/budget").
		GET("", h.GetBudget).
		GET("/entries", h.ListBudgetEntries).
		POST("/entries", h.RecordBudgetEntry)
}

func paymentRoutes(h *handler.FinanceHandler) *DomainGroup {
	return NewDomainGroup("payments", "/payments").
		PATCH("/:id", h.UpdatePayment).
		POST("/:id/reverse", h.ReversePayment).
		DELETE("/:id", h.DeletePayment)
}

func supplierRoutes(h *handler.PartnerHandler) *DomainGroup {
	return NewDomainGroup("suppliers", "/suppliers").
		POST("", h.CreateSupplier).
		GET("", h.ListSuppliers).
		GET("/:id", h.GetSupplier)
}

func customerRoutes(h *handler.PartnerHandler) *DomainGroup {
	return NewDomainGroup("customers", "/customers").
		POST("", h.CreateCustomer).
		GET("", h.ListCustomers).
		GET("/:id", h.GetCustomer)
}

func purchaseRoutes(h *handler.TradeHandler) *DomainGroup {
	return NewDomainGroup("purchases", "/purchases").
		POST("", h.CreatePurchase).
		GET("", h.ListPurchases).
		GET("/:id", h.GetPurchase).
		PUT("/:id", h.UpdatePurchase).
		POST("/:id/complete", h.CompletePurchase).
		POST("/:id/cancel", h.CancelPurchase).
		DELETE("/:id", h.DeletePurchase)
}

func orderRoutes(h *handler.TradeHandler, payments *handler.FinanceHandler) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		POST("", h.CreateOrder).
		GET("", h.ListOrders).
		GET("/:id", h.GetOrder).
		DELETE("/:id", h.DeleteOrder).
		POST("/:id/items", h.AddOrderItem).
		PATCH("/:id/items/:item_id", h.UpdateOrderItem).
		DELETE("/:id/items/:item_id", h.RemoveOrderItem).
		PUT("/:id/charges", h.SetOrderCharges).
		POST("/:id/transition", h.TransitionOrder).
		GET("/:id/payments", payments.ListOrderPayments).
		POST("/:id/payments", payments.RecordPayment).
		POST("/:id/payments/recompute", payments.RecomputePayments)
}
