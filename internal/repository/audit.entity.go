package repository

import (
	"encoding/json"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
)

type AuditEntity struct {
	RunID              int64      `db:"run_id"              gorm:"primaryKey;autoIncrement;column:run_id"`
	PipelineName       string     `db:"pipeline_name"       gorm:"column:pipeline_name;not null"`
	StartTime          time.Time  `db:"start_time"          gorm:"column:start_time;not null"`
	EndTime            *time.Time `db:"end_time"            gorm:"column:end_time"`
	Status             string     `db:"status"              gorm:"column:status;not null;index"`
	RecordsExtracted   int        `db:"records_extracted"   gorm:"column:records_extracted;default:0"`
	RecordsTransformed int        `db:"records_transformed" gorm:"column:records_transformed;default:0"`
	RecordsLoaded      int        `db:"records_loaded"      gorm:"column:records_loaded;default:0"`
	RecordsRejected    int        `db:"records_rejected"    gorm:"column:records_rejected;default:0"`
	ErrorMessage       string     `db:"error_message"       gorm:"column:error_message"`
	QualityReport      string     `db:"quality_report"      gorm:"column:quality_report"`
	CreatedAt          time.Time  `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (AuditEntity) TableName() string {
	return "etl_audit_log"
}

func toAuditEntity(m *model.AuditEntry) (*AuditEntity, error) {
	if m == nil {
		return nil, nil
	}
	report := ""
	if m.QualityReport != nil {
		raw, err := json.Marshal(m.QualityReport)
		if err != nil {
			return nil, err
		}
		report = string(raw)
	}
	return &AuditEntity{
		RunID:              m.RunID,
		PipelineName:       m.PipelineName,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		Status:             string(m.Status),
		RecordsExtracted:   m.RecordsExtracted,
		RecordsTransformed: m.RecordsTransformed,
		RecordsLoaded:      m.RecordsLoaded,
		RecordsRejected:    m.RecordsRejected,
		ErrorMessage:       m.ErrorMessage,
		QualityReport:      report,
		CreatedAt:          m.CreatedAt,
	}, nil
}

func toAuditModel(e *AuditEntity) (*model.AuditEntry, error) {
	if e == nil {
		return nil, nil
	}
	var report *model.QualityReport
	if e.QualityReport != "" {
		report = &model.QualityReport{}
		if err := json.Unmarshal([]byte(e.QualityReport), report); err != nil {
			return nil, err
		}
	}
	return &model.AuditEntry{
		RunID:              e.RunID,
		PipelineName:       e.PipelineName,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		Status:             model.RunStatus(e.Status),
		RecordsExtracted:   e.RecordsExtracted,
		RecordsTransformed: e.RecordsTransformed,
		RecordsLoaded:      e.RecordsLoaded,
		RecordsRejected:    e.RecordsRejected,
		ErrorMessage:       e.ErrorMessage,
		QualityReport:      report,
		CreatedAt:          e.CreatedAt,
	}, nil
}
