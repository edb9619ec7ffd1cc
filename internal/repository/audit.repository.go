package repository

import (
	"context"
	"errors"
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrAuditEntryNotFound = errors.New("audit entry not found")
	// ErrAuditEntryFinalized guards the create-once/finalize-once lifecycle:
	// a success or failed entry is never re-opened or re-finalized.
	ErrAuditEntryFinalized = errors.New("audit entry already finalized")
)

type AuditRepository struct {
	*pg.DB
}

func NewAuditRepository(db *pg.DB) *AuditRepository {
	return &AuditRepository{
		db,
	}
}

// Create opens a run's audit entry with status running and returns the
// warehouse-assigned run id.
func (r *AuditRepository) Create(ctx context.Context, pipelineName string, startTime time.Time) (*model.AuditEntry, error) {
	entity := &AuditEntity{
		PipelineName: pipelineName,
		StartTime:    startTime,
		Status:       string(model.RunStatusRunning),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toAuditModel(entity)
}

// FinalizeParams carries the run outcome. Counts mirror the quality report;
// a failed run reports zero loaded rows.
type FinalizeParams struct {
	Status             model.RunStatus
	EndTime            time.Time
	RecordsExtracted   int
	RecordsTransformed int
	RecordsLoaded      int
	RecordsRejected    int
	ErrorMessage       string
	QualityReport      *model.QualityReport
}

// Finalize closes a running entry exactly once. Finalizing an entry that is
// not in status running fails with ErrAuditEntryFinalized.
func (r *AuditRepository) Finalize(ctx context.Context, runID int64, p FinalizeParams) error {
	if p.Status != model.RunStatusSuccess && p.Status != model.RunStatusFailed {
		return errors.New("finalize status must be success or failed")
	}

	report := ""
	if p.QualityReport != nil {
		entity, err := toAuditEntity(&model.AuditEntry{QualityReport: p.QualityReport})
		if err != nil {
			return err
		}
		report = entity.QualityReport
	}

	result := r.Write(ctx).
		Model(&AuditEntity{}).
		Where("run_id = ? AND status = ?", runID, string(model.RunStatusRunning)).
		Updates(map[string]interface{}{
			"end_time":            p.EndTime,
			"status":              string(p.Status),
			"records_extracted":   p.RecordsExtracted,
			"records_transformed": p.RecordsTransformed,
			"records_loaded":      p.RecordsLoaded,
			"records_rejected":    p.RecordsRejected,
			"error_message":       p.ErrorMessage,
			"quality_report":      report,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var entity AuditEntity
		err := r.Write(ctx).Where("run_id = ?", runID).First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuditEntryNotFound
		}
		if err != nil {
			return err
		}
		return ErrAuditEntryFinalized
	}
	return nil
}

func (r *AuditRepository) Get(ctx context.Context, runID int64) (*model.AuditEntry, error) {
	var entity AuditEntity
	err := r.Read(ctx).
		Where("run_id = ?", runID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditEntryNotFound
		}
		return nil, err
	}
	return toAuditModel(&entity)
}

// List returns the most recent entries first; the monitoring surface reads
// runs through this.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entities []*AuditEntity
	err := r.Read(ctx).
		Order("run_id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.AuditEntry, len(entities))
	for i, e := range entities {
		if out[i], err = toAuditModel(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}
