package loader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/internal/repository"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"github.com/finboard/warehouse-etl/test/fixtures"
	"github.com/finboard/warehouse-etl/test/helpers"
)

func newVerifier(db *pg.DB) *Verifier {
	v := NewVerifier(db,
		decimal.RequireFromString("0.01"),
		decimal.NewFromInt(1_000_000),
		time.UTC)
	v.now = func() time.Time { return fixtures.BaseTime.Add(time.Hour) }
	return v
}

func loadFacts(t *testing.T, db *pg.DB, txs ...model.Transaction) {
	t.Helper()
	l := newLoader(db)
	_, err := l.Load(context.Background(), []model.Customer{fixtures.TestCustomerGold}, txs)
	require.NoError(t, err)
}

func enrichedTx(id string, amount float64) model.Transaction {
	tx := fixtures.NewTestTransaction(id, fixtures.TestCustomerGold.CustomerID, amount, fixtures.BaseTime)
	tx.ProcessedAt = fixtures.BaseTime.Add(30 * time.Minute)
	return tx
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("clean warehouse passes every check", func(t *testing.T) {
		db := helpers.SetupTestDB(t)
		loadFacts(t, db, enrichedTx("TXN001", 100), enrichedTx("TXN002", 250))

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)
		require.Len(t, results, 8)

		for name, check := range results {
			assert.True(t, check.Passed, "check %s: value %v", name, check.Value)
		}
		assert.Equal(t, 2.0, results[CheckRowsLoadedToday].Value)
	})

	t.Run("empty warehouse fails only the freshness check", func(t *testing.T) {
		db := helpers.SetupTestDB(t)

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)

		assert.False(t, results[CheckRowsLoadedToday].Passed)
		assert.True(t, results[CheckNoNullAmounts].Passed)
		assert.True(t, results[CheckNoDuplicateIDs].Passed)
		assert.True(t, results[CheckNoOrphanedFacts].Passed)
	})

	t.Run("stale load fails the freshness check", func(t *testing.T) {
		db := helpers.SetupTestDB(t)
		old := enrichedTx("TXN001", 100)
		old.ProcessedAt = fixtures.BaseTime.Add(-48 * time.Hour)
		loadFacts(t, db, old)

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)
		assert.False(t, results[CheckRowsLoadedToday].Passed)
	})

	t.Run("out-of-bounds amount is caught", func(t *testing.T) {
		db := helpers.SetupTestDB(t)
		// bypass the pipeline: write a row the validator would have rejected
		bad := enrichedTx("TXN001", 2_000_000)
		loadFacts(t, db, bad)

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)
		assert.False(t, results[CheckAmountsWithinBounds].Passed)
		assert.Equal(t, 1.0, results[CheckAmountsWithinBounds].Value)
	})

	t.Run("orphaned fact is caught", func(t *testing.T) {
		db := helpers.SetupTestDB(t)
		// write the fact row directly, skipping the loader's reference check
		factRepo := repository.NewFactRepository(db)
		orphan := enrichedTx("TXN001", 100)
		orphan.CustomerID = "CUST999999"
		_, err := factRepo.InsertBatch(ctx, []model.Transaction{orphan})
		require.NoError(t, err)

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)
		assert.False(t, results[CheckNoOrphanedFacts].Passed)
	})

	t.Run("future-dated fact is caught", func(t *testing.T) {
		db := helpers.SetupTestDB(t)
		future := enrichedTx("TXN001", 100)
		future.Timestamp = fixtures.BaseTime.Add(72 * time.Hour)
		loadFacts(t, db, future)

		results, err := newVerifier(db).Verify(ctx)
		require.NoError(t, err)
		assert.False(t, results[CheckNoFutureDates].Passed)
	})
}
