package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/test/fixtures"
)

func testRules() Rules {
	return Rules{
		AmountMin: decimal.RequireFromString("0.01"),
		AmountMax: decimal.NewFromInt(1_000_000),
		MaxAge:    730 * 24 * time.Hour,
		Now:       fixtures.BaseTime,
	}
}

func TestValidator_Check(t *testing.T) {
	v := New(testRules(), 1)
	goodTime := fixtures.BaseTime.Add(-24 * time.Hour)

	t.Run("clean record passes", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 100, goodTime)
		assert.Empty(t, v.Check(tx))
	})

	t.Run("amount below minimum", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 0, goodTime)
		assert.Equal(t, []model.ReasonCode{model.ReasonAmountOutOfRange}, v.Check(tx))

		tx.Amount = decimal.RequireFromString("-5.00")
		assert.Equal(t, []model.ReasonCode{model.ReasonAmountOutOfRange}, v.Check(tx))
	})

	t.Run("amount above maximum", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 2_000_000, goodTime)
		assert.Equal(t, []model.ReasonCode{model.ReasonAmountOutOfRange}, v.Check(tx))
	})

	t.Run("boundary amounts pass", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 0.01, goodTime)
		assert.Empty(t, v.Check(tx))

		tx.Amount = decimal.NewFromInt(1_000_000)
		assert.Empty(t, v.Check(tx))
	})

	t.Run("future timestamp", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 100, fixtures.BaseTime.Add(time.Minute))
		assert.Equal(t, []model.ReasonCode{model.ReasonFutureTimestamp}, v.Check(tx))
	})

	t.Run("timestamp exactly now passes", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 100, fixtures.BaseTime)
		assert.Empty(t, v.Check(tx))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 100, fixtures.BaseTime.Add(-731*24*time.Hour))
		assert.Equal(t, []model.ReasonCode{model.ReasonStaleTimestamp}, v.Check(tx))
	})

	t.Run("invalid status", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "CUST000001", 100, goodTime)
		tx.Status = model.TransactionStatus("reversed")
		assert.Equal(t, []model.ReasonCode{model.ReasonInvalidStatus}, v.Check(tx))
	})

	t.Run("missing customer id", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "", 100, goodTime)
		assert.Equal(t, []model.ReasonCode{model.ReasonMissingCustomerID}, v.Check(tx))
	})

	t.Run("multiple violations reported in rule order", func(t *testing.T) {
		tx := fixtures.NewTestTransaction("TXN001", "", 2_000_000, fixtures.BaseTime.Add(time.Hour))
		tx.Status = model.TransactionStatus("reversed")
		assert.Equal(t, []model.ReasonCode{
			model.ReasonAmountOutOfRange,
			model.ReasonFutureTimestamp,
			model.ReasonInvalidStatus,
			model.ReasonMissingCustomerID,
		}, v.Check(tx))
	})
}

func TestValidator_Partition(t *testing.T) {
	goodTime := fixtures.BaseTime.Add(-24 * time.Hour)

	input := []model.Transaction{
		fixtures.NewTestTransaction("TXN001", "CUST000001", 100, goodTime),
		fixtures.NewTestTransaction("TXN002", "CUST000001", 2_000_000, goodTime),
		fixtures.NewTestTransaction("TXN003", "CUST000002", 50, goodTime),
		fixtures.NewTestTransaction("TXN004", "CUST000002", 75, fixtures.BaseTime.Add(time.Hour)),
		fixtures.NewTestTransaction("TXN005", "CUST000003", 25, goodTime),
	}

	t.Run("sequential preserves input order", func(t *testing.T) {
		accepted, rejected := New(testRules(), 1).Partition(input)

		require.Len(t, accepted, 3)
		assert.Equal(t, "TXN001", accepted[0].TransactionID)
		assert.Equal(t, "TXN003", accepted[1].TransactionID)
		assert.Equal(t, "TXN005", accepted[2].TransactionID)

		require.Len(t, rejected, 2)
		assert.Equal(t, "TXN002", rejected[0].TransactionID)
		assert.Equal(t, model.StageValidate, rejected[0].Stage)
		assert.Equal(t, "TXN004", rejected[1].TransactionID)
	})

	t.Run("parallel matches sequential exactly", func(t *testing.T) {
		seqAccepted, seqRejected := New(testRules(), 1).Partition(input)
		parAccepted, parRejected := New(testRules(), 4).Partition(input)

		assert.Equal(t, seqAccepted, parAccepted)
		assert.Equal(t, seqRejected, parRejected)
	})

	t.Run("parallel over a larger batch stays ordered", func(t *testing.T) {
		big := make([]model.Transaction, 0, 200)
		for i := 0; i < 200; i++ {
			amount := float64(10 + i)
			if i%7 == 0 {
				amount = 2_000_000
			}
			big = append(big, fixtures.NewTestTransaction(
				txID(i), "CUST000001", amount, goodTime))
		}

		seqAccepted, seqRejected := New(testRules(), 1).Partition(big)
		parAccepted, parRejected := New(testRules(), 8).Partition(big)

		assert.Equal(t, seqAccepted, parAccepted)
		assert.Equal(t, seqRejected, parRejected)
	})

	t.Run("empty input", func(t *testing.T) {
		accepted, rejected := New(testRules(), 4).Partition(nil)
		assert.Empty(t, accepted)
		assert.Empty(t, rejected)
	})
}

func txID(i int) string {
	return "TXN" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}
