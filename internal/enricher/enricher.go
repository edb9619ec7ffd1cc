package enricher

import (
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/shopspring/decimal"
)

var bucketLabels = []model.AmountCategory{
	model.AmountMicro,
	model.AmountSmall,
	model.AmountMedium,
	model.AmountLarge,
	model.AmountVeryLarge,
}

// Enricher derives calendar fields, the amount-category bucket and the risk
// score/level. It runs only on deduplicated accepted records and reads
// nothing but the record's own fields plus the referenced customer's tier;
// given the same input it always produces the same output.
type Enricher struct {
	loc          *time.Location
	bucketBounds []decimal.Decimal
	levelBounds  []float64
	now          func() time.Time
}

func New(loc *time.Location, bucketBounds []decimal.Decimal, levelBounds []float64) *Enricher {
	if loc == nil {
		loc = time.UTC
	}
	return &Enricher{
		loc:          loc,
		bucketBounds: bucketBounds,
		levelBounds:  levelBounds,
		now:          time.Now,
	}
}

// Enrich returns enriched copies in input order. customers maps customer id
// to the dimension record; a transaction whose customer is not in the map is
// still enriched (the reference check is the loader's job) and scored with
// the riskiest tier weight.
func (e *Enricher) Enrich(txs []model.Transaction, customers map[string]model.Customer) []model.Transaction {
	processedAt := e.now().In(e.loc)
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		local := tx.Timestamp.In(e.loc)
		tx.Year = local.Year()
		tx.Month = int(local.Month())
		tx.Day = local.Day()
		// Monday=0 .. Sunday=6, the warehouse's dayofweek convention
		tx.DayOfWeek = (int(local.Weekday()) + 6) % 7
		tx.Hour = local.Hour()

		tx.AmountCategory = e.amountCategory(tx.Amount)

		var tier model.CustomerTier
		if c, ok := customers[tx.CustomerID]; ok {
			tier = c.Tier
		}
		tx.RiskScore = e.riskScore(tx, tier)
		tx.RiskLevel = e.riskLevel(tx.RiskScore)
		tx.ProcessedAt = processedAt

		out[i] = tx
	}
	return out
}

// amountCategory places the amount into the first bucket whose upper bound
// it does not exceed; above the last bound it is very_large. Bounds are
// non-overlapping by config validation.
func (e *Enricher) amountCategory(amount decimal.Decimal) model.AmountCategory {
	for i, bound := range e.bucketBounds {
		if amount.LessThanOrEqual(bound) {
			return bucketLabels[i]
		}
	}
	return bucketLabels[len(bucketLabels)-1]
}

func (e *Enricher) riskLevel(score float64) model.RiskLevel {
	switch {
	case score < e.levelBounds[0]:
		return model.RiskLow
	case score < e.levelBounds[1]:
		return model.RiskMedium
	case score < e.levelBounds[2]:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}
