package finance_test

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/erp/ledger/internal/application/finance"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func record(t *testing.T, stack *testutil.Stack, entryType finance.BudgetEntryType, amount string) (*appfinance.RecordBudgetEntryResponse, error) {
	t.Helper()
	return stack.Services.Budget.RecordEntry(context.Background(), appfinance.RecordBudgetEntryRequest{
		Type:        entryType,
		Amount:      dec(amount),
		Description: string(entryType),
		ActorID:     testutil.ActorID(),
	})
}

func TestBudgetService_RecordEntry(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)

	budget, err := stack.Services.Budget.CurrentBudget(ctx)
	require.NoError(t, err)
	assert.True(t, budget.IsZero(), "an empty ledger has no budget")

	initial, err := record(t, stack, finance.BudgetEntryInitial, "1000")
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(initial.BudgetAfter))

	addition, err := record(t, stack, finance.BudgetEntryAddition, "250.50")
	require.NoError(t, err)
	assert.True(t, dec("1250.50").Equal(addition.BudgetAfter))

	deduction, err := record(t, stack, finance.BudgetEntryDeduction, "200")
	require.NoError(t, err)
	assert.True(t, dec("-200").Equal(deduction.Entry.Amount), "deductions are stored negative")
	assert.True(t, dec("1050.50").Equal(deduction.BudgetAfter))

	adjustment, err := record(t, stack, finance.BudgetEntryAdjustment, "-50.50")
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(adjustment.BudgetAfter))

	budget, err = stack.Services.Budget.CurrentBudget(ctx)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(budget))
	assert.Equal(t, 4, stack.Events.Count(finance.EventTypeBudgetEntryRecorded))
}

func TestBudgetService_RecordEntryValidation(t *testing.T) {
	stack := testutil.NewStack(t)
	_, err := record(t, stack, finance.BudgetEntryInitial, "100")
	require.NoError(t, err)

	tests := []struct {
		name      string
		entryType finance.BudgetEntryType
		amount    string
		wantErr   error
	}{
		{"deduction beyond budget", finance.BudgetEntryDeduction, "100.01", shared.ErrInsufficientBudget},
		{"negative addition", finance.BudgetEntryAddition, "-5", shared.ErrInvalidInput},
		{"zero adjustment", finance.BudgetEntryAdjustment, "0", shared.ErrInvalidInput},
		{"unknown type", finance.BudgetEntryType("windfall"), "5", shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := record(t, stack, tt.entryType, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	budget, err := stack.Services.Budget.CurrentBudget(context.Background())
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(budget), "rejected entries leave the budget unchanged")
}

func TestBudgetService_ListEntries(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t)

	backdated := stack.Clock.Now().Add(-48 * time.Hour)
	_, err := stack.Services.Budget.RecordEntry(ctx, appfinance.RecordBudgetEntryRequest{
		Type:        finance.BudgetEntryInitial,
		Amount:      dec("500"),
		Description: "Opening capital",
		EntryDate:   backdated,
		ActorID:     testutil.ActorID(),
	})
	require.NoError(t, err)
	stack.Clock.Advance(time.Hour)
	_, err = record(t, stack, finance.BudgetEntryAddition, "20")
	require.NoError(t, err)
	_, err = record(t, stack, finance.BudgetEntryAddition, "30")
	require.NoError(t, err)

	entries, total, err := stack.Services.Budget.ListEntries(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)

	all, _, err := stack.Services.Budget.ListEntries(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, string(finance.BudgetEntryInitial), all[2].Type, "newest first")
	assert.WithinDuration(t, backdated, all[2].EntryDate, time.Second)
}
