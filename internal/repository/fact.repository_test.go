package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/warehouse-etl/internal/model"
)

func testFact(id, customerID string, amount float64) model.Transaction {
	return model.Transaction{
		TransactionID:  id,
		CustomerID:     customerID,
		Timestamp:      time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC),
		Amount:         decimal.NewFromFloat(amount),
		MerchantID:     "MERCH0001",
		Category:       "retail",
		Status:         model.StatusCompleted,
		PaymentMethod:  "credit_card",
		Year:           2026,
		Month:          3,
		Day:            4,
		DayOfWeek:      2,
		Hour:           14,
		AmountCategory: model.AmountSmall,
		RiskScore:      10,
		RiskLevel:      model.RiskLow,
		ProcessedAt:    time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC),
	}
}

func seedFactCustomer(t *testing.T, repo *CustomerRepository, id string) {
	t.Helper()
	err := repo.UpsertBatch(context.Background(), []model.Customer{
		testCustomer(id, "seed", model.TierGold),
	})
	require.NoError(t, err)
}

func TestFactRepository_InsertBatch(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewFactRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()
	seedFactCustomer(t, customers, "CUST000001")

	t.Run("inserts and counts", func(t *testing.T) {
		n, err := repo.InsertBatch(ctx, []model.Transaction{
			testFact("TXN001", "CUST000001", 100),
			testFact("TXN002", "CUST000001", 250),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("duplicate transaction id across batches", func(t *testing.T) {
		n, err := repo.InsertBatch(ctx, []model.Transaction{
			testFact("TXN001", "CUST000001", 999),
		})
		assert.ErrorIs(t, err, ErrDuplicateTransactionID)
		assert.Zero(t, n)

		// the original row is untouched
		got, err := repo.Get(ctx, "TXN001")
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		n, err := repo.InsertBatch(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestFactRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewFactRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()
	seedFactCustomer(t, customers, "CUST000001")

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "TXN999")
		assert.ErrorIs(t, err, ErrFactNotFound)
	})

	t.Run("enrichment fields survive the round trip", func(t *testing.T) {
		want := testFact("TXN010", "CUST000001", 123.45)
		_, err := repo.InsertBatch(ctx, []model.Transaction{want})
		require.NoError(t, err)

		got, err := repo.Get(ctx, "TXN010")
		require.NoError(t, err)
		assert.Equal(t, want.TransactionID, got.TransactionID)
		assert.True(t, want.Amount.Equal(got.Amount))
		assert.Equal(t, want.Year, got.Year)
		assert.Equal(t, want.DayOfWeek, got.DayOfWeek)
		assert.Equal(t, want.AmountCategory, got.AmountCategory)
		assert.Equal(t, want.RiskScore, got.RiskScore)
		assert.Equal(t, want.RiskLevel, got.RiskLevel)
	})
}
