package model

// ReasonCode is a stable identifier explaining why a record was excluded.
// Codes are part of the quality-report contract and must not change shape
// across runs.
type ReasonCode string

const (
	ReasonMalformedRecord      ReasonCode = "malformed_record"
	ReasonMissingTransactionID ReasonCode = "missing_transaction_id"
	ReasonMissingCustomerID    ReasonCode = "missing_customer_id"
	ReasonAmountOutOfRange     ReasonCode = "amount_out_of_range"
	ReasonFutureTimestamp      ReasonCode = "future_timestamp"
	ReasonStaleTimestamp       ReasonCode = "stale_timestamp"
	ReasonInvalidStatus        ReasonCode = "invalid_status"
	ReasonDuplicateTransaction ReasonCode = "duplicate_transaction_id"
)

// Stage names used in rejections and metrics.
const (
	StageNormalize = "normalize"
	StageValidate  = "validate"
	StageDedup     = "dedup"
	StageEnrich    = "enrich"
	StageLoad      = "load"
)

// Rejection records one excluded input record. Per-record failures are
// recovered locally: the record is tallied here and the run proceeds.
type Rejection struct {
	TransactionID string       `json:"transaction_id"`
	Stage         string       `json:"stage"`
	Reasons       []ReasonCode `json:"reasons"`
}
