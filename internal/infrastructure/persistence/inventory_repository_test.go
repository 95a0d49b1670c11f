package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM over a mocked postgres connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func recordColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version",
		"product_id", "quantity", "reserved_quantity", "average_cost",
	}
}

func TestGormInventoryRecordRepository_FindByProduct(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRecordRepository(db)

		recordID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(recordColumns()).AddRow(
			recordID, now, now, 3,
			productID, "100", "30", "10.5",
		)

		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		record, err := repo.FindByProduct(context.Background(), productID)

		require.NoError(t, err)
		assert.Equal(t, productID, record.ProductID)
		assert.True(t, record.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, record.Available().Equal(decimal.NewFromInt(70)))
		assert.Equal(t, 3, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRecordRepository(db)

		productID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByProduct(context.Background(), productID)

		assert.Nil(t, record)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryRecordRepository_FindByProductForUpdate(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormInventoryRecordRepository(db)

	productID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 .* FOR UPDATE`).
		WithArgs(productID, 1).
		WillReturnRows(sqlmock.NewRows(recordColumns()).AddRow(
			uuid.New(), now, now, 1,
			productID, "5", "0", "2",
		))

	record, err := repo.FindByProductForUpdate(context.Background(), productID)

	require.NoError(t, err)
	assert.True(t, record.Quantity.Equal(decimal.NewFromInt(5)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInventoryRecordRepository_Save(t *testing.T) {
	newRecord := func(t *testing.T) *inventory.InventoryRecord {
		record, err := inventory.NewInventoryRecord(uuid.New(), time.Now())
		require.NoError(t, err)
		record.Quantity = decimal.NewFromInt(10)
		require.NoError(t, record.Reserve(decimal.NewFromInt(4), time.Now()))
		return record
	}

	t.Run("updates when the stored version matches", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRecordRepository(db)
		record := newRecord(t)

		mock.ExpectExec(`UPDATE "inventory_records" SET .* WHERE product_id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when no row matched", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRecordRepository(db)
		record := newRecord(t)

		mock.ExpectExec(`UPDATE "inventory_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), record)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMovementRepository_Append(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormMovementRepository(db)

	movement, err := inventory.NewMovement(uuid.New(), inventory.MovementTypePurchase,
		decimal.NewFromInt(10), decimal.NewFromInt(3), decimal.NewFromInt(10),
		inventory.PurchaseRef(uuid.New()), uuid.New(), time.Now())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "stock_movements"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Append(context.Background(), movement))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBudgetRepository_Lock(t *testing.T) {
	t.Run("locks the existing row", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBudgetRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "budget_ledger_locks" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(budgetLockID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(budgetLockID))

		assert.NoError(t, repo.Lock(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("seeds the row on first use", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormBudgetRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "budget_ledger_locks"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(`INSERT INTO "budget_ledger_locks" .* ON CONFLICT DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "budget_ledger_locks" .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(budgetLockID))

		assert.NoError(t, repo.Lock(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBudgetRepository_Sum(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormBudgetRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) as total FROM "budget_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1250.5"))

	sum, err := repo.Sum(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1250.5", sum.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_Delete(t *testing.T) {
	t.Run("deletes an existing product", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()
		mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), productID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()
		mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), productID), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
