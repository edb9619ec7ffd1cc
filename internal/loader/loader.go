package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/internal/repository"
	"github.com/finboard/warehouse-etl/pkg/logger"
	"github.com/finboard/warehouse-etl/pkg/pg"
)

var (
	// ErrUnknownCustomerReference aborts the run: a fact references a
	// customer id absent from the dimension set. The loader never fabricates
	// placeholder customers; dimension acquisition is upstream's job.
	ErrUnknownCustomerReference = errors.New("fact references unknown customer")

	// ErrDuplicateTransactionID re-exported for callers that only import
	// this package.
	ErrDuplicateTransactionID = repository.ErrDuplicateTransactionID
)

type CustomerRepository interface {
	UpsertBatch(ctx context.Context, customers []model.Customer) error
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
}

type FactRepository interface {
	InsertBatch(ctx context.Context, txs []model.Transaction) (int, error)
}

// Loader commits one run's dimension and fact rows as a single
// all-or-nothing unit. It holds the only transactional boundary in the
// pipeline and never retries; re-invoking a failed run is the orchestrator's
// decision.
type Loader struct {
	db           *pg.DB
	customerRepo CustomerRepository
	factRepo     FactRepository
}

func New(db *pg.DB, customerRepo CustomerRepository, factRepo FactRepository) *Loader {
	return &Loader{
		db:           db,
		customerRepo: customerRepo,
		factRepo:     factRepo,
	}
}

// Load upserts the run's customers and inserts its facts inside one
// transaction. On any error, timeout or cancellation the transaction rolls
// back in full; the warehouse never holds a partial load. Returns the number
// of fact rows committed.
func (l *Loader) Load(ctx context.Context, customers []model.Customer, txs []model.Transaction) (int, error) {
	loaded := 0
	err := l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.customerRepo.UpsertBatch(ctx, customers); err != nil {
			return fmt.Errorf("dimension upsert: %w", err)
		}

		ids := make([]string, len(txs))
		for i, tx := range txs {
			ids[i] = tx.CustomerID
		}
		missing, err := l.customerRepo.MissingIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("reference check: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrUnknownCustomerReference, missing)
		}

		n, err := l.factRepo.InsertBatch(ctx, txs)
		if err != nil {
			return fmt.Errorf("fact insert: %w", err)
		}
		loaded = n
		return nil
	})
	if err != nil {
		logger.Error("load rolled back", "error", err)
		return 0, err
	}
	return loaded, nil
}
