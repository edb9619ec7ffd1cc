package quality

import (
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
)

// Check names exposed in the report. Stable identifiers: external reporting
// reads them by name across runs.
const (
	CheckMinRowCount    = "min_row_count"
	CheckDuplicateRatio = "duplicate_ratio"
	CheckPassRatio      = "pass_ratio"
)

// Thresholds are the run-level quality gates the report is evaluated
// against. Failing a check marks it in the report; it does not abort the
// run (gating is the orchestrator's call).
type Thresholds struct {
	MinRows           int
	MaxDuplicateRatio float64
	MinPassRatio      float64
}

// StageCounts carries the stage outputs the reporter aggregates. The
// reporter itself is pure: same counts in, same report out, no side effects.
type StageCounts struct {
	Extracted  int
	Malformed  []model.Rejection
	Rejected   []model.Rejection
	Duplicates []model.Rejection
	Enriched   int
}

// BuildReport folds the stage outcomes into one immutable QualityReport.
// Pass ratio is accepted/extracted and defined as 0 for empty input.
func BuildReport(c StageCounts, t Thresholds, now time.Time) model.QualityReport {
	byReason := make(map[model.ReasonCode]int)
	for _, r := range c.Malformed {
		for _, reason := range r.Reasons {
			byReason[reason]++
		}
	}
	for _, r := range c.Rejected {
		for _, reason := range r.Reasons {
			byReason[reason]++
		}
	}

	rejected := len(c.Malformed) + len(c.Rejected)
	accepted := c.Extracted - rejected - len(c.Duplicates)
	if accepted < 0 {
		accepted = 0
	}

	passRatio := 0.0
	duplicateRatio := 0.0
	if c.Extracted > 0 {
		passRatio = float64(accepted) / float64(c.Extracted)
		duplicateRatio = float64(len(c.Duplicates)) / float64(c.Extracted)
	}

	return model.QualityReport{
		RecordsExtracted:  c.Extracted,
		RecordsMalformed:  len(c.Malformed),
		RecordsAccepted:   accepted,
		RecordsRejected:   rejected,
		RejectedByReason:  byReason,
		DuplicatesRemoved: len(c.Duplicates),
		RecordsEnriched:   c.Enriched,
		PassRatio:         passRatio,
		Checks: map[string]model.CheckResult{
			CheckMinRowCount:    {Passed: accepted >= t.MinRows, Value: float64(accepted)},
			CheckDuplicateRatio: {Passed: duplicateRatio <= t.MaxDuplicateRatio, Value: duplicateRatio},
			CheckPassRatio:      {Passed: passRatio >= t.MinPassRatio, Value: passRatio},
		},
		GeneratedAt: now,
	}
}
