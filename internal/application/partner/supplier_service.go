package partner

import (
	"context"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/partner"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	txScope uow.TransactionScope
	clock   shared.Clock
	logger  *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(txScope uow.TransactionScope, clock shared.Clock, logger *zap.Logger) *SupplierService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{txScope: txScope, clock: clock, logger: logger}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	now := s.clock.Now()
	supplier, err := partner.NewSupplier(req.Name, now)
	if err != nil {
		return nil, err
	}
	supplier.SetContact(req.ContactName, req.Phone, req.Email, req.Address, now)
	supplier.Notes = req.Notes

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		return repos.Suppliers().Save(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("actor_id", req.ActorID.String()))
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	var response SupplierResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		supplier, err := repos.Suppliers().FindByID(ctx, supplierID)
		if err != nil {
			return err
		}
		response = ToSupplierResponse(supplier)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves suppliers with pagination
func (s *SupplierService) List(ctx context.Context, filter PartnerListFilter) ([]SupplierResponse, int64, error) {
	var (
		suppliers []partner.Supplier
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		suppliers, total, err = repos.Suppliers().FindAll(ctx, toDomainFilter(filter))
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses, total, nil
}
