package finance

import (
	"context"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BudgetService exposes the budget ledger
type BudgetService struct {
	txScope        uow.TransactionScope
	ledger         *BudgetLedger
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(txScope uow.TransactionScope, ledger *BudgetLedger, clock shared.Clock, logger *zap.Logger) *BudgetService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{txScope: txScope, ledger: ledger, clock: clock, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BudgetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CurrentBudget returns the sum of all budget entries
func (s *BudgetService) CurrentBudget(ctx context.Context) (decimal.Decimal, error) {
	var budget decimal.Decimal
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		budget, err = repos.Budget().Sum(ctx)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return budget, nil
}

// RecordEntry appends a manual entry to the budget ledger
func (s *BudgetService) RecordEntry(ctx context.Context, req RecordBudgetEntryRequest) (*RecordBudgetEntryResponse, error) {
	entry, err := finance.NewBudgetEntry(req.Type, req.Amount, req.Description, req.ActorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	entry.WithEntryDate(req.EntryDate)

	var events uow.EventCollector
	var after decimal.Decimal
	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		after, err = s.ledger.Record(ctx, repos, entry, &events)
		return err
	})
	if err != nil {
		if _, ok := shared.IsDomainError(err); ok {
			s.logger.Info("budget entry rejected",
				zap.String("type", string(req.Type)),
				zap.String("amount", req.Amount.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("budget entry recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()),
		zap.String("budget_after", after.String()),
		zap.String("actor_id", req.ActorID.String()))
	events.Publish(ctx, s.eventPublisher, s.logger)

	return &RecordBudgetEntryResponse{
		Entry:       ToBudgetEntryResponse(entry),
		BudgetAfter: after,
	}, nil
}

// ListEntries lists budget entries, newest first
func (s *BudgetService) ListEntries(ctx context.Context, page, pageSize int) ([]BudgetEntryResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "entry_date"
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	var (
		entries []finance.BudgetEntry
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		entries, total, err = repos.Budget().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BudgetEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToBudgetEntryResponse(&entries[i])
	}
	return responses, total, nil
}
