package catalog

import (
	"context"
	"errors"
	"strings"

	appinventory "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	txScope        uow.TransactionScope
	ledger         *appinventory.Ledger
	alerts         *appinventory.AlertGenerator
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	txScope uow.TransactionScope,
	ledger *appinventory.Ledger,
	alerts *appinventory.AlertGenerator,
	clock shared.Clock,
	logger *zap.Logger,
) *ProductService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		txScope: txScope,
		ledger:  ledger,
		alerts:  alerts,
		clock:   clock,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product together with its empty inventory record
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	now := s.clock.Now()
	product, err := catalog.NewProduct(req.Code, req.Name, req.Unit, now)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Rename(req.Name, req.Description, req.Unit, now); err != nil {
			return nil, err
		}
	}
	if err := product.SetPrices(req.BuyingPrice, req.SellingPrice, now); err != nil {
		return nil, err
	}
	if err := product.SetLowStockThreshold(req.LowStockThreshold, now); err != nil {
		return nil, err
	}

	var events uow.EventCollector
	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		// Check if code already exists
		_, err := repos.Products().FindByCode(ctx, product.Code)
		if err == nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Product with this code already exists")
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		if _, err := s.ledger.Lock(ctx, repos, product.ID); err != nil {
			return err
		}
		events.Collect(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
		zap.String("actor_id", req.ActorID.String()))
	events.Publish(ctx, s.eventPublisher, s.logger)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	var response ProductResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByCode retrieves a product by code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	var response ProductResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.Products().FindByCode(ctx, strings.ToUpper(code))
		if err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		products []catalog.Product
		total    int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		products, total, err = repos.Products().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product. A threshold change re-evaluates the product's stock alert.
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	var events uow.EventCollector
	var response ProductResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		now := s.clock.Now()

		if req.Name != nil || req.Description != nil || req.Unit != nil {
			name, description, unit := product.Name, product.Description, product.Unit
			if req.Name != nil {
				name = *req.Name
			}
			if req.Description != nil {
				description = *req.Description
			}
			if req.Unit != nil {
				unit = *req.Unit
			}
			if err := product.Rename(name, description, unit, now); err != nil {
				return err
			}
		}

		if req.BuyingPrice != nil || req.SellingPrice != nil {
			buying, selling := product.BuyingPrice, product.SellingPrice
			if req.BuyingPrice != nil {
				buying = *req.BuyingPrice
			}
			if req.SellingPrice != nil {
				selling = *req.SellingPrice
			}
			if err := product.SetPrices(buying, selling, now); err != nil {
				return err
			}
		}

		thresholdChanged := false
		if req.LowStockThreshold != nil && !req.LowStockThreshold.Equal(product.LowStockThreshold) {
			if err := product.SetLowStockThreshold(*req.LowStockThreshold, now); err != nil {
				return err
			}
			thresholdChanged = true
		}

		if req.Active != nil && *req.Active != product.IsActive() {
			if *req.Active {
				err = product.Activate(now)
			} else {
				err = product.Deactivate(now)
			}
			if err != nil {
				return err
			}
		}

		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		events.Collect(product)

		if thresholdChanged {
			if _, err := s.alerts.Evaluate(ctx, repos, product.ID, &events); err != nil {
				return err
			}
		}

		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher, s.logger)
	return &response, nil
}

// Delete deletes a product. Only products without stock on hand or held may be deleted.
func (s *ProductService) Delete(ctx context.Context, productID, actorID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		record, err := s.ledger.Lock(ctx, repos, productID)
		if err != nil {
			return err
		}
		if err := product.CanDelete(record.Quantity, record.ReservedQuantity); err != nil {
			return err
		}
		if _, err := repos.Alerts().DeleteUnacknowledged(ctx, productID); err != nil {
			return err
		}
		if err := repos.Inventory().DeleteByProduct(ctx, productID); err != nil {
			return err
		}
		return repos.Products().Delete(ctx, productID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted",
		zap.String("product_id", productID.String()),
		zap.String("actor_id", actorID.String()))
	return nil
}
