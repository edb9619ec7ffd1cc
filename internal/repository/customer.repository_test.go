package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/warehouse-etl/internal/model"
)

func testCustomer(id, name string, tier model.CustomerTier) model.Customer {
	return model.Customer{
		CustomerID:       id,
		Name:             name,
		RegistrationDate: time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC),
		Tier:             tier,
		Email:            name + "@example.com",
		Active:           true,
	}
}

func TestCustomerRepository_UpsertBatch(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	t.Run("insert new customers", func(t *testing.T) {
		err := repo.UpsertBatch(ctx, []model.Customer{
			testCustomer("CUST000001", "ada", model.TierGold),
			testCustomer("CUST000002", "noor", model.TierBronze),
		})
		require.NoError(t, err)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("conflict updates attributes instead of failing", func(t *testing.T) {
		updated := testCustomer("CUST000001", "ada-renamed", model.TierPlatinum)
		updated.Active = false
		err := repo.UpsertBatch(ctx, []model.Customer{updated})
		require.NoError(t, err)

		got, err := repo.Get(ctx, "CUST000001")
		require.NoError(t, err)
		assert.Equal(t, "ada-renamed", got.Name)
		assert.Equal(t, model.TierPlatinum, got.Tier)
		assert.False(t, got.Active)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("intra-batch duplicate keeps the last entry", func(t *testing.T) {
		err := repo.UpsertBatch(ctx, []model.Customer{
			testCustomer("CUST000003", "first", model.TierBronze),
			testCustomer("CUST000003", "second", model.TierSilver),
		})
		require.NoError(t, err)

		got, err := repo.Get(ctx, "CUST000003")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Name)
		assert.Equal(t, model.TierSilver, got.Tier)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpsertBatch(ctx, nil))
	})
}

func TestCustomerRepository_MissingIDs(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	err := repo.UpsertBatch(ctx, []model.Customer{
		testCustomer("CUST000001", "ada", model.TierGold),
		testCustomer("CUST000002", "noor", model.TierBronze),
	})
	require.NoError(t, err)

	t.Run("all present", func(t *testing.T) {
		missing, err := repo.MissingIDs(ctx, []string{"CUST000001", "CUST000002"})
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("reports unknown ids in input order", func(t *testing.T) {
		missing, err := repo.MissingIDs(ctx, []string{
			"CUST000009", "CUST000001", "CUST000007", "CUST000009",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"CUST000009", "CUST000007"}, missing)
	})

	t.Run("empty input", func(t *testing.T) {
		missing, err := repo.MissingIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, missing)
	})
}

func TestCustomerRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "CUST999999")
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		want := testCustomer("CUST000010", "round", model.TierSilver)
		require.NoError(t, repo.UpsertBatch(ctx, []model.Customer{want}))

		got, err := repo.Get(ctx, "CUST000010")
		require.NoError(t, err)
		assert.Equal(t, want.CustomerID, got.CustomerID)
		assert.Equal(t, want.Tier, got.Tier)
		assert.Equal(t, want.Email, got.Email)
		assert.True(t, want.RegistrationDate.Equal(got.RegistrationDate))
	})
}
