package model

import "time"

// RunStatus is the lifecycle state of an audit entry. An entry is created as
// running and finalized exactly once as success or failed, never re-opened.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// AuditEntry is the durable record of one pipeline run. RunID is assigned by
// the warehouse and increases monotonically across runs.
type AuditEntry struct {
	RunID              int64          `json:"run_id"`
	PipelineName       string         `json:"pipeline_name"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            *time.Time     `json:"end_time"`
	Status             RunStatus      `json:"status"`
	RecordsExtracted   int            `json:"records_extracted"`
	RecordsTransformed int            `json:"records_transformed"`
	RecordsLoaded      int            `json:"records_loaded"`
	RecordsRejected    int            `json:"records_rejected"`
	ErrorMessage       string         `json:"error_message,omitempty"`
	QualityReport      *QualityReport `json:"quality_report,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

func (AuditEntry) TableName() string { return "etl_audit_log" }
