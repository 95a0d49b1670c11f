package partner

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/partner"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	txScope uow.TransactionScope
	clock   shared.Clock
	logger  *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(txScope uow.TransactionScope, clock shared.Clock, logger *zap.Logger) *CustomerService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{txScope: txScope, clock: clock, logger: logger}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	now := s.clock.Now()
	customer, err := partner.NewCustomer(req.Name, now)
	if err != nil {
		return nil, err
	}
	customer.SetContact(req.Phone, req.Email, req.Address, now)
	customer.Notes = req.Notes

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("actor_id", req.ActorID.String()))
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	var response CustomerResponse
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		response = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves customers with pagination
func (s *CustomerService) List(ctx context.Context, filter PartnerListFilter) ([]CustomerResponse, int64, error) {
	var (
		customers []partner.Customer
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		customers, total, err = repos.Customers().FindAll(ctx, toDomainFilter(filter))
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// CreditCustomerIfDue adds a delivered, fully paid order to its customer's
// lifetime purchases. The order's CustomerCredited flag keeps it to once per
// order; the caller saves the order afterwards.
func CreditCustomerIfDue(ctx context.Context, repos uow.Repositories, order *trade.Order, at time.Time) (bool, error) {
	if !order.ShouldCreditCustomer() {
		return false, nil
	}
	customer, err := repos.Customers().FindByIDForUpdate(ctx, order.CustomerID)
	if err != nil {
		return false, err
	}
	if err := customer.RecordPurchase(order.TotalAmount, at); err != nil {
		return false, err
	}
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return false, err
	}
	order.MarkCustomerCredited()
	return true, nil
}
