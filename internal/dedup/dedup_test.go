package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/test/fixtures"
)

func TestDedup(t *testing.T) {
	base := fixtures.BaseTime

	t.Run("no duplicates passes through unchanged", func(t *testing.T) {
		input := []model.Transaction{
			fixtures.NewTestTransaction("TXN001", "CUST000001", 10, base),
			fixtures.NewTestTransaction("TXN002", "CUST000001", 20, base),
		}
		kept, rejected := Dedup(input)
		assert.Equal(t, input, kept)
		assert.Empty(t, rejected)
	})

	t.Run("latest timestamp wins", func(t *testing.T) {
		older := fixtures.NewTestTransaction("TXN001", "CUST000001", 10, base.Add(-time.Hour))
		newer := fixtures.NewTestTransaction("TXN001", "CUST000001", 99, base)

		kept, rejected := Dedup([]model.Transaction{older, newer})
		require.Len(t, kept, 1)
		assert.True(t, kept[0].Amount.Equal(newer.Amount))

		require.Len(t, rejected, 1)
		assert.Equal(t, model.StageDedup, rejected[0].Stage)
		assert.Equal(t, []model.ReasonCode{model.ReasonDuplicateTransaction}, rejected[0].Reasons)
	})

	t.Run("winner keeps the first sighting's position", func(t *testing.T) {
		kept, _ := Dedup([]model.Transaction{
			fixtures.NewTestTransaction("TXN001", "CUST000001", 10, base.Add(-time.Hour)),
			fixtures.NewTestTransaction("TXN002", "CUST000001", 20, base),
			fixtures.NewTestTransaction("TXN001", "CUST000001", 99, base),
		})
		require.Len(t, kept, 2)
		assert.Equal(t, "TXN001", kept[0].TransactionID)
		assert.True(t, kept[0].Amount.Equal(fixtures.NewTestTransaction("", "", 99, base).Amount))
		assert.Equal(t, "TXN002", kept[1].TransactionID)
	})

	t.Run("equal timestamps keep the earlier record", func(t *testing.T) {
		first := fixtures.NewTestTransaction("TXN001", "CUST000001", 10, base)
		second := fixtures.NewTestTransaction("TXN001", "CUST000001", 99, base)

		kept, rejected := Dedup([]model.Transaction{first, second})
		require.Len(t, kept, 1)
		assert.True(t, kept[0].Amount.Equal(first.Amount))
		require.Len(t, rejected, 1)
	})

	t.Run("three-way duplicate keeps one record", func(t *testing.T) {
		kept, rejected := Dedup([]model.Transaction{
			fixtures.NewTestTransaction("TXN001", "CUST000001", 1, base.Add(-2*time.Hour)),
			fixtures.NewTestTransaction("TXN001", "CUST000001", 2, base),
			fixtures.NewTestTransaction("TXN001", "CUST000001", 3, base.Add(-time.Hour)),
		})
		require.Len(t, kept, 1)
		assert.True(t, kept[0].Amount.Equal(fixtures.NewTestTransaction("", "", 2, base).Amount))
		assert.Len(t, rejected, 2)
	})

	t.Run("deterministic over repeated runs", func(t *testing.T) {
		input := []model.Transaction{
			fixtures.NewTestTransaction("TXN003", "CUST000001", 30, base),
			fixtures.NewTestTransaction("TXN001", "CUST000001", 10, base.Add(-time.Hour)),
			fixtures.NewTestTransaction("TXN002", "CUST000001", 20, base),
			fixtures.NewTestTransaction("TXN001", "CUST000001", 11, base),
		}
		kept1, rejected1 := Dedup(input)
		kept2, rejected2 := Dedup(input)
		assert.Equal(t, kept1, kept2)
		assert.Equal(t, rejected1, rejected2)
	})

	t.Run("empty input", func(t *testing.T) {
		kept, rejected := Dedup(nil)
		assert.Empty(t, kept)
		assert.Empty(t, rejected)
	})
}
