package repository

import (
	"context"
	"errors"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

// UpsertBatch writes dimension rows, updating attributes on conflict with
// the business key. Later entries win over earlier ones with the same id,
// matching upsert semantics for intra-batch duplicates.
func (r *CustomerRepository) UpsertBatch(ctx context.Context, customers []model.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	deduped := make(map[string]int, len(customers))
	entities := make([]*CustomerEntity, 0, len(customers))
	for i := range customers {
		e := toCustomerEntity(&customers[i])
		if pos, ok := deduped[e.CustomerID]; ok {
			entities[pos] = e
			continue
		}
		deduped[e.CustomerID] = len(entities)
		entities = append(entities, e)
	}

	return r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_name", "registration_date", "customer_tier", "email", "is_active",
			}),
		}).
		Create(entities).Error
}

// MissingIDs returns, in input order, each distinct id from ids that has no
// dimension row. Empty result means every reference resolves.
func (r *CustomerRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	distinct := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	var existing []string
	err := r.Write(ctx).
		Model(&CustomerEntity{}).
		Where("customer_id IN ?", distinct).
		Pluck("customer_id", &existing).Error
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	var missing []string
	for _, id := range distinct {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *CustomerRepository) Get(ctx context.Context, customerID string) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).
		Where("customer_id = ?", customerID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&CustomerEntity{}).Count(&count).Error
	return count, err
}
