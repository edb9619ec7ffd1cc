package dedup

import (
	"github.com/finboard/warehouse-etl/internal/model"
)

// Dedup removes records sharing a transaction id. Keep-rule: latest
// transaction timestamp wins; equal timestamps keep the record appearing
// first in input order. Survivors come back in the input order of their kept
// element, so repeated execution over the same input yields byte-identical
// output. Discards are tallied as duplicate_transaction_id, apart from rule
// rejects.
func Dedup(txs []model.Transaction) ([]model.Transaction, []model.Rejection) {
	type slot struct {
		position int // index into kept, fixed at first sighting
		tx       model.Transaction
	}
	byID := make(map[string]*slot, len(txs))
	kept := make([]model.Transaction, 0, len(txs))
	var rejected []model.Rejection

	reject := func(tx model.Transaction) {
		rejected = append(rejected, model.Rejection{
			TransactionID: tx.TransactionID,
			Stage:         model.StageDedup,
			Reasons:       []model.ReasonCode{model.ReasonDuplicateTransaction},
		})
	}

	for _, tx := range txs {
		existing, ok := byID[tx.TransactionID]
		if !ok {
			byID[tx.TransactionID] = &slot{position: len(kept), tx: tx}
			kept = append(kept, tx)
			continue
		}
		// strictly later wins; ties keep the earlier input position
		if tx.Timestamp.After(existing.tx.Timestamp) {
			reject(existing.tx)
			existing.tx = tx
			kept[existing.position] = tx
		} else {
			reject(tx)
		}
	}
	return kept, rejected
}
