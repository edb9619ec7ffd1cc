package validator

import (
	"sync"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/worker"
	"github.com/shopspring/decimal"
)

// Rules is the fixed, ordered business-rule set. Validation is total and
// side-effect free: the same input always yields the same accept/reject
// partition, which the quality report depends on.
type Rules struct {
	AmountMin decimal.Decimal
	AmountMax decimal.Decimal
	MaxAge    time.Duration
	// Now is the processing instant the future-timestamp rule compares
	// against. Fixed per run so repeated validation is reproducible.
	Now time.Time
}

type Validator struct {
	rules   Rules
	workers int
}

func New(rules Rules, workers int) *Validator {
	if workers < 1 {
		workers = 1
	}
	return &Validator{rules: rules, workers: workers}
}

// Check returns every failing rule's reason code, in rule order. An empty
// result means the record is accepted.
func (v *Validator) Check(tx model.Transaction) []model.ReasonCode {
	var reasons []model.ReasonCode

	if tx.Amount.LessThan(v.rules.AmountMin) || tx.Amount.GreaterThan(v.rules.AmountMax) {
		reasons = append(reasons, model.ReasonAmountOutOfRange)
	}
	if tx.Timestamp.After(v.rules.Now) {
		reasons = append(reasons, model.ReasonFutureTimestamp)
	} else if v.rules.MaxAge > 0 && tx.Timestamp.Before(v.rules.Now.Add(-v.rules.MaxAge)) {
		reasons = append(reasons, model.ReasonStaleTimestamp)
	}
	if !tx.Status.Valid() {
		reasons = append(reasons, model.ReasonInvalidStatus)
	}
	if tx.CustomerID == "" {
		// shape only; existence in the dimension is the loader's check
		reasons = append(reasons, model.ReasonMissingCustomerID)
	}
	return reasons
}

// Partition splits records into accepted (input order preserved) and
// rejected with their reason codes.
func (v *Validator) Partition(txs []model.Transaction) ([]model.Transaction, []model.Rejection) {
	if v.workers > 1 && len(txs) > 1 {
		return v.partitionParallel(txs)
	}

	accepted := make([]model.Transaction, 0, len(txs))
	var rejected []model.Rejection
	for _, tx := range txs {
		if reasons := v.Check(tx); len(reasons) > 0 {
			rejected = append(rejected, model.Rejection{
				TransactionID: tx.TransactionID,
				Stage:         model.StageValidate,
				Reasons:       reasons,
			})
			continue
		}
		accepted = append(accepted, tx)
	}
	return accepted, rejected
}

type checkJob struct {
	index int
	tx    model.Transaction
}

// partitionParallel fans records out over the worker pool. Each job writes
// its verdict into a slot keyed by input index, so the merged output order is
// identical to the sequential path no matter how jobs are scheduled.
func (v *Validator) partitionParallel(txs []model.Transaction) ([]model.Transaction, []model.Rejection) {
	verdicts := make([][]model.ReasonCode, len(txs))

	var wg sync.WaitGroup
	wg.Add(len(txs))

	pool := worker.NewWorkerManager(len(txs), v.workers, nil)
	pool.SetWorker(func(_ int, job interface{}) {
		j := job.(checkJob)
		verdicts[j.index] = v.Check(j.tx)
		wg.Done()
	})
	go pool.Start() //nolint:errcheck
	for i, tx := range txs {
		pool.Enqueue(checkJob{index: i, tx: tx})
	}
	wg.Wait()
	pool.Exit()

	accepted := make([]model.Transaction, 0, len(txs))
	var rejected []model.Rejection
	for i, tx := range txs {
		if reasons := verdicts[i]; len(reasons) > 0 {
			rejected = append(rejected, model.Rejection{
				TransactionID: tx.TransactionID,
				Stage:         model.StageValidate,
				Reasons:       reasons,
			})
			continue
		}
		accepted = append(accepted, tx)
	}
	return accepted, rejected
}
