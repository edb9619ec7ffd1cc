package enricher

import (
	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/shopspring/decimal"
)

// Additive signal weights. Each signal contributes independently and a more
// extreme signal value never lowers the sum, so the score is monotonic per
// signal; the clamp keeps it inside [0,100].
var (
	amountHigh     = decimal.NewFromInt(5_000)
	amountVeryHigh = decimal.NewFromInt(10_000)
)

const (
	weightAmountHigh     = 30
	weightAmountVeryHigh = 40
	weightFailedStatus   = 50
	weightWeekend        = 10
	weightLateNight      = 20
)

// tierWeights: lower tiers carry less account history. An unknown tier
// (customer missing from the dimension input) scores as bronze.
var tierWeights = map[model.CustomerTier]float64{
	model.TierBronze:   10,
	model.TierSilver:   5,
	model.TierGold:     0,
	model.TierPlatinum: 0,
}

// riskScore combines amount magnitude, settlement status, time-of-day and
// day-of-week anomaly and customer tier. The caller must have populated
// DayOfWeek and Hour first.
func (e *Enricher) riskScore(tx model.Transaction, tier model.CustomerTier) float64 {
	score := 0.0

	if tx.Amount.GreaterThan(amountHigh) {
		score += weightAmountHigh
	}
	if tx.Amount.GreaterThan(amountVeryHigh) {
		score += weightAmountVeryHigh
	}
	if tx.Status == model.StatusFailed {
		score += weightFailedStatus
	}
	if tx.DayOfWeek >= 5 {
		score += weightWeekend
	}
	if tx.Hour < 6 {
		score += weightLateNight
	}
	if w, ok := tierWeights[tier]; ok {
		score += w
	} else {
		score += tierWeights[model.TierBronze]
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
