package model

import "time"

// CheckResult is one named quality check with its measured value.
type CheckResult struct {
	Passed bool    `json:"passed"`
	Value  float64 `json:"value"`
}

// QualityReport summarizes one run's validation, dedup and load outcomes.
// It is built once per run, handed to the warehouse loader and embedded in
// the audit entry; nothing mutates it after that hand-off.
type QualityReport struct {
	RecordsExtracted  int                `json:"records_extracted"`
	RecordsMalformed  int                `json:"records_malformed"`
	RecordsAccepted   int                `json:"records_accepted"`
	RecordsRejected   int                `json:"records_rejected"`
	RejectedByReason  map[ReasonCode]int `json:"rejected_by_reason"`
	DuplicatesRemoved int                `json:"duplicates_removed"`
	RecordsEnriched   int                `json:"records_enriched"`
	RecordsLoaded     int                `json:"records_loaded"`
	PassRatio         float64            `json:"pass_ratio"`
	Checks            map[string]CheckResult `json:"checks"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
