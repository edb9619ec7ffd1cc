package loader

import (
	"context"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"github.com/shopspring/decimal"
)

// Verification check names. Each is re-verifiable by external tooling
// against the committed warehouse state, independent of the pipeline's
// in-memory bookkeeping.
const (
	CheckRowsLoadedToday     = "rows_loaded_today"
	CheckNoNullAmounts       = "no_null_amounts"
	CheckNoNonPositiveAmount = "no_non_positive_amounts"
	CheckNoDuplicateIDs      = "no_duplicate_transaction_ids"
	CheckNoOrphanedFacts     = "no_orphaned_customer_references"
	CheckNoFutureDates       = "no_future_dated_transactions"
	CheckStatusRecognized    = "status_values_recognized"
	CheckAmountsWithinBounds = "amounts_within_sanity_bounds"
)

// Verifier runs the post-load assertion battery on the read handle.
type Verifier struct {
	db        *pg.DB
	amountMin decimal.Decimal
	amountMax decimal.Decimal
	loc       *time.Location
	now       func() time.Time
}

func NewVerifier(db *pg.DB, amountMin, amountMax decimal.Decimal, loc *time.Location) *Verifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Verifier{
		db:        db,
		amountMin: amountMin,
		amountMax: amountMax,
		loc:       loc,
		now:       time.Now,
	}
}

// Verify executes every check and reports measured values. The counting
// checks pass at zero; rows_loaded_today passes when at least one fact row
// was processed since local midnight.
func (v *Verifier) Verify(ctx context.Context) (map[string]model.CheckResult, error) {
	now := v.now().In(v.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)

	results := make(map[string]model.CheckResult)
	read := v.db.Read(ctx)

	count := func(name string, passWhenZero bool, query string, args ...interface{}) error {
		var n int64
		if err := read.Raw(query, args...).Scan(&n).Error; err != nil {
			return err
		}
		passed := n == 0
		if !passWhenZero {
			passed = n > 0
		}
		results[name] = model.CheckResult{Passed: passed, Value: float64(n)}
		return nil
	}

	checks := []func() error{
		func() error {
			return count(CheckRowsLoadedToday, false,
				"SELECT COUNT(*) FROM fact_transactions WHERE processed_at >= ?", midnight)
		},
		func() error {
			return count(CheckNoNullAmounts, true,
				"SELECT COUNT(*) FROM fact_transactions WHERE amount IS NULL")
		},
		func() error {
			return count(CheckNoNonPositiveAmount, true,
				"SELECT COUNT(*) FROM fact_transactions WHERE amount <= 0")
		},
		func() error {
			return count(CheckNoDuplicateIDs, true,
				"SELECT COUNT(*) FROM (SELECT transaction_id FROM fact_transactions GROUP BY transaction_id HAVING COUNT(*) > 1) d")
		},
		func() error {
			return count(CheckNoOrphanedFacts, true,
				"SELECT COUNT(*) FROM fact_transactions f LEFT JOIN dim_customers c ON f.customer_id = c.customer_id WHERE c.customer_id IS NULL")
		},
		func() error {
			return count(CheckNoFutureDates, true,
				"SELECT COUNT(*) FROM fact_transactions WHERE transaction_date > ?", now)
		},
		func() error {
			return count(CheckStatusRecognized, true,
				"SELECT COUNT(*) FROM fact_transactions WHERE status NOT IN ('completed','pending','failed')")
		},
		func() error {
			return count(CheckAmountsWithinBounds, true,
				"SELECT COUNT(*) FROM fact_transactions WHERE amount < ? OR amount > ?",
				v.amountMin.String(), v.amountMax.String())
		},
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, err
		}
	}
	return results, nil
}
