package pipeline

import (
	"context"
	"time"

	"github.com/finboard/warehouse-etl/internal/config"
	"github.com/finboard/warehouse-etl/internal/dedup"
	"github.com/finboard/warehouse-etl/internal/enricher"
	"github.com/finboard/warehouse-etl/internal/loader"
	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/internal/normalizer"
	"github.com/finboard/warehouse-etl/internal/quality"
	"github.com/finboard/warehouse-etl/internal/repository"
	"github.com/finboard/warehouse-etl/internal/validator"
	"github.com/finboard/warehouse-etl/pkg/logger"
)

// finalizeTimeout bounds the audit write after a run ends. Independent of
// the run context: a cancelled run must still end as exactly one failed
// audit entry.
const finalizeTimeout = 10 * time.Second

// RunResult is what one end-to-end execution produced. A non-nil error from
// Run always pairs with a failed audit entry in the result.
type RunResult struct {
	Audit      *model.AuditEntry
	Report     model.QualityReport
	Loaded     int
	Rejections []model.Rejection
}

// Pipeline turns raw records into warehouse rows: normalize, validate,
// dedup, enrich, report, load, audit. Stages through the reporter are pure;
// the loader owns the only transactional boundary.
type Pipeline struct {
	cfg       *config.Config
	auditRepo *repository.AuditRepository
	loader    *loader.Loader
	now       func() time.Time
}

func New(cfg *config.Config, auditRepo *repository.AuditRepository, l *loader.Loader) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		auditRepo: auditRepo,
		loader:    l,
		now:       time.Now,
	}
}

// Run executes one batch. Per-record failures are tallied and skipped;
// run-fatal errors (unknown customer reference, cross-run duplicate id,
// storage failure, timeout, cancellation) roll the load back and close the
// audit entry as failed with zero loaded rows.
func (p *Pipeline) Run(ctx context.Context, rawCustomers []model.RawCustomer, rawTransactions []model.RawTransaction) (*RunResult, error) {
	start := p.now().In(p.cfg.Location())

	entry, err := p.auditRepo.Create(ctx, p.cfg.PipelineName, start)
	if err != nil {
		// no audit entry could be opened; nothing to finalize
		logger.Error("failed to open audit entry", "error", err)
		return nil, err
	}
	logger.Info("run started",
		"run_id", entry.RunID,
		"pipeline", p.cfg.PipelineName,
		"transactions", len(rawTransactions),
		"customers", len(rawCustomers),
	)

	norm := normalizer.New(p.cfg.Location())
	customers, customerRejects := norm.NormalizeCustomers(rawCustomers)
	if len(customerRejects) > 0 {
		logger.Warn("malformed customer records excluded", "count", len(customerRejects))
	}

	normalized, malformed := norm.NormalizeTransactions(rawTransactions)

	v := validator.New(validator.Rules{
		AmountMin: p.cfg.AmountMin(),
		AmountMax: p.cfg.AmountMax(),
		MaxAge:    time.Duration(p.cfg.MaxRecordAgeDays) * 24 * time.Hour,
		Now:       start,
	}, p.cfg.ValidatorWorkers)
	accepted, ruleRejected := v.Partition(normalized)

	deduped, duplicates := dedup.Dedup(accepted)

	customerIndex := make(map[string]model.Customer, len(customers))
	for _, c := range customers {
		customerIndex[c.CustomerID] = c
	}
	e := enricher.New(p.cfg.Location(), p.cfg.BucketBounds(), p.cfg.RiskLevelBounds())
	enriched := e.Enrich(deduped, customerIndex)

	report := quality.BuildReport(quality.StageCounts{
		Extracted:  len(rawTransactions),
		Malformed:  malformed,
		Rejected:   ruleRejected,
		Duplicates: duplicates,
		Enriched:   len(enriched),
	}, quality.Thresholds{
		MinRows:           p.cfg.QualityMinRows,
		MaxDuplicateRatio: p.cfg.QualityMaxDuplicateRatio,
		MinPassRatio:      p.cfg.QualityMinPassRatio,
	}, start)

	recordStageMetrics(report)

	rejections := make([]model.Rejection, 0, len(malformed)+len(ruleRejected)+len(duplicates))
	rejections = append(rejections, malformed...)
	rejections = append(rejections, ruleRejected...)
	rejections = append(rejections, duplicates...)

	loadCtx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()
	loaded, loadErr := p.loader.Load(loadCtx, customers, enriched)

	end := p.now().In(p.cfg.Location())
	result := &RunResult{
		Audit:      entry,
		Report:     report,
		Loaded:     loaded,
		Rejections: rejections,
	}

	if loadErr != nil {
		p.finalize(entry, repository.FinalizeParams{
			Status:             model.RunStatusFailed,
			EndTime:            end,
			RecordsExtracted:   report.RecordsExtracted,
			RecordsTransformed: report.RecordsEnriched,
			RecordsLoaded:      0,
			RecordsRejected:    report.RecordsRejected + report.DuplicatesRemoved,
			ErrorMessage:       loadErr.Error(),
			QualityReport:      &report,
		})
		recordRunMetrics(model.RunStatusFailed, end.Sub(start))
		logger.Error("run failed", "run_id", entry.RunID, "error", loadErr)
		return result, loadErr
	}

	report.RecordsLoaded = loaded
	result.Report = report
	result.Loaded = loaded
	recordLoadedMetric(loaded)

	p.finalize(entry, repository.FinalizeParams{
		Status:             model.RunStatusSuccess,
		EndTime:            end,
		RecordsExtracted:   report.RecordsExtracted,
		RecordsTransformed: report.RecordsEnriched,
		RecordsLoaded:      loaded,
		RecordsRejected:    report.RecordsRejected + report.DuplicatesRemoved,
		QualityReport:      &report,
	})
	recordRunMetrics(model.RunStatusSuccess, end.Sub(start))

	logger.Info("run completed",
		"run_id", entry.RunID,
		"extracted", report.RecordsExtracted,
		"loaded", loaded,
		"rejected", report.RecordsRejected,
		"duplicates", report.DuplicatesRemoved,
		"pass_ratio", report.PassRatio,
		"duration", end.Sub(start).String(),
	)
	return result, nil
}

// finalize closes the audit entry on a context detached from the run: the
// rollback path must record its failed entry even when the run's context is
// already cancelled.
func (p *Pipeline) finalize(entry *model.AuditEntry, params repository.FinalizeParams) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if err := p.auditRepo.Finalize(ctx, entry.RunID, params); err != nil {
		logger.Error("failed to finalize audit entry", "run_id", entry.RunID, "error", err)
		return
	}
	entry.Status = params.Status
	entry.EndTime = &params.EndTime
	entry.RecordsExtracted = params.RecordsExtracted
	entry.RecordsTransformed = params.RecordsTransformed
	entry.RecordsLoaded = params.RecordsLoaded
	entry.RecordsRejected = params.RecordsRejected
	entry.ErrorMessage = params.ErrorMessage
	entry.QualityReport = params.QualityReport
}
