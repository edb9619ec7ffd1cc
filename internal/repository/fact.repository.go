package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateTransactionID marks a cross-run uniqueness violation: the
	// transaction id already exists in the warehouse from a prior run.
	// Intra-run duplicates never reach the repository; the dedup stage
	// removes them.
	ErrDuplicateTransactionID = errors.New("transaction id already loaded")

	ErrFactNotFound = errors.New("fact row not found")
)

type FactRepository struct {
	*pg.DB
}

func NewFactRepository(db *pg.DB) *FactRepository {
	return &FactRepository{
		db,
	}
}

// InsertBatch inserts fact rows and returns how many were written. A
// unique-key violation on the transaction id surfaces as
// ErrDuplicateTransactionID; the caller's transaction scope owns the
// rollback.
func (r *FactRepository) InsertBatch(ctx context.Context, txs []model.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	entities := toFactEntities(txs)
	if err := r.Write(ctx).Create(entities).Error; err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateTransactionID
		}
		return 0, err
	}
	return len(entities), nil
}

// isDuplicateKey recognizes unique violations across the drivers in play
// (gorm's translated error for postgres, raw message for the sqlite test
// harness).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

func (r *FactRepository) Get(ctx context.Context, transactionID string) (*model.Transaction, error) {
	var entity FactEntity
	err := r.Read(ctx).
		Where("transaction_id = ?", transactionID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFactNotFound
		}
		return nil, err
	}
	return toFactModel(&entity), nil
}

func (r *FactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&FactEntity{}).Count(&count).Error
	return count, err
}
