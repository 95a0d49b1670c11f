package finance

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestNewBudgetEntry(t *testing.T) {
	actor := uuid.New()

	tests := []struct {
		name       string
		entryType  BudgetEntryType
		magnitude  string
		wantAmount string
		wantErr    bool
	}{
		{"initial", BudgetEntryInitial, "1000", "1000", false},
		{"addition", BudgetEntryAddition, "250.50", "250.5", false},
		{"deduction stored negative", BudgetEntryDeduction, "80", "-80", false},
		{"negative adjustment", BudgetEntryAdjustment, "-15", "-15", false},
		{"positive adjustment", BudgetEntryAdjustment, "15", "15", false},
		{"zero addition", BudgetEntryAddition, "0", "", true},
		{"negative initial", BudgetEntryInitial, "-1", "", true},
		{"negative deduction magnitude", BudgetEntryDeduction, "-5", "", true},
		{"zero adjustment", BudgetEntryAdjustment, "0", "", true},
		{"unknown type", BudgetEntryType("transfer"), "5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewBudgetEntry(tt.entryType, dec(tt.magnitude), "test", actor, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, entry.Amount.Equal(dec(tt.wantAmount)), "amount %s", entry.Amount)
			assert.Equal(t, actor, entry.ActorID)
			assert.Equal(t, testNow, entry.EntryDate)
		})
	}
}

func TestBudgetEntry_ForReference(t *testing.T) {
	entry, err := NewBudgetEntry(BudgetEntryDeduction, dec("10"), "purchase", uuid.New(), testNow)
	require.NoError(t, err)
	purchaseID := uuid.New()

	entry.ForReference("purchase", purchaseID)

	assert.Equal(t, "purchase", entry.ReferenceKind)
	assert.Equal(t, purchaseID, *entry.ReferenceID)
	assert.True(t, entry.IsDebit())
}

func TestEnsureCovers(t *testing.T) {
	assert.NoError(t, EnsureCovers(dec("100"), dec("100")))
	assert.ErrorIs(t, EnsureCovers(dec("99.99"), dec("100")), shared.ErrInsufficientBudget)
	assert.ErrorIs(t, EnsureCovers(dec("-5"), dec("1")), shared.ErrInsufficientBudget)
}
