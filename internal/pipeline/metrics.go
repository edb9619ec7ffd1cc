package pipeline

import (
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
	"github.com/finboard/warehouse-etl/pkg/prom"
)

const (
	outcomeAccepted  = "accepted"
	outcomeRejected  = "rejected"
	outcomeDuplicate = "duplicate"
	outcomeMalformed = "malformed"
	outcomeEnriched  = "enriched"
	outcomeLoaded    = "loaded"
)

func recordStageMetrics(report model.QualityReport) {
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(report.RecordsMalformed), model.StageNormalize, outcomeMalformed)
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(report.RecordsAccepted), model.StageValidate, outcomeAccepted)
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(report.RecordsRejected-report.RecordsMalformed), model.StageValidate, outcomeRejected)
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(report.DuplicatesRemoved), model.StageDedup, outcomeDuplicate)
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(report.RecordsEnriched), model.StageEnrich, outcomeEnriched)
}

func recordLoadedMetric(loaded int) {
	prom.AddCounterVec(prom.SystemPipeline, prom.MetricRecordsTotal,
		float64(loaded), model.StageLoad, outcomeLoaded)
}

func recordRunMetrics(status model.RunStatus, duration time.Duration) {
	prom.IncCounterVec(prom.SystemPipeline, prom.MetricRunsTotal, string(status))
	prom.ObserveHistogram(prom.SystemPipeline, prom.MetricRunDurationSeconds, duration.Seconds())
}
