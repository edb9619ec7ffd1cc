package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/internal/repository"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB builds an in-memory warehouse with the dimension, fact and
// audit tables migrated, wired into a pg.DB so repositories and the
// transactional load path run unchanged.
func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.CustomerEntity{},
		&repository.FactEntity{},
		&repository.AuditEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

// SeedCustomer writes one dimension row directly, bypassing the pipeline.
func SeedCustomer(t *testing.T, db *pg.DB, customer model.Customer) {
	ctx := context.Background()
	repo := repository.NewCustomerRepository(db)
	require.NoError(t, repo.UpsertBatch(ctx, []model.Customer{customer}))
}

// FactCount returns the number of committed fact rows.
func FactCount(t *testing.T, db *pg.DB) int64 {
	ctx := context.Background()
	repo := repository.NewFactRepository(db)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	return count
}

// RegisteredAt is a fixed registration date for seeded customers.
var RegisteredAt = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
