package services

import (
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"sensordigest/internal/summary"
	"time"
)

type IngestServiceInterface interface {
	Record(payload *models.IngestPayload, now time.Time) *models.IngestResult
}

type IngestService struct {
	config   *structures.Config
	workbook interfaces.WorkbookInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
}

// Record appends the reading to the sensor log and refreshes LastUpdate of its
// summary column. Failures are logged and reported on the result only.
func (is *IngestService) Record(payload *models.IngestPayload, now time.Time) *models.IngestResult {
	result := &models.IngestResult{}

	rec := models.NewSensorRecord(payload, now)
	id, err := is.workbook.AppendRecord(rec)
	if err != nil {
		is.logger.Errorf(providers.TypeIngest, "Append to %q failed: %s", models.LogSheetName(payload.Name), err)
		is.metrics.IncIngestTotal("error")
		result.Err = apperrors.NewStorageError("append record", err)
		return result
	}
	result.RecordID = id

	snapshot, err := is.workbook.Snapshot()
	if err != nil {
		is.logger.Errorf(providers.TypeIngest, "Summary read failed: %s", err)
		is.metrics.IncIngestTotal("error")
		result.Err = apperrors.NewStorageError("read summary", err)
		return result
	}

	index := columnIndex(is.config, snapshot, is.logger)
	column, ok := index.Resolve(payload.Name)
	if !ok {
		is.logger.Debugf(providers.TypeIngest, "Sensor %q has no summary column", payload.Name)
		is.metrics.IncIngestTotal("unlisted")
		return result
	}
	result.Column = column

	if err := is.workbook.SetLastUpdate(column, now); err != nil {
		is.logger.Errorf(providers.TypeIngest, "LastUpdate of %q failed: %s", payload.Name, err)
		is.metrics.IncIngestTotal("error")
		result.Err = apperrors.NewStorageError("write LastUpdate", err)
		return result
	}
	result.SummaryUpdate = true
	is.metrics.IncIngestTotal("ok")
	return result
}

// columnIndex builds the per-run column registry and warns about duplicate names.
func columnIndex(conf *structures.Config, snapshot *models.SummarySnapshot, logger providers.Logger) *summary.ColumnIndex {
	index := summary.FromSnapshot(snapshot, conf.Summary.FirstColumn, conf.Summary.ColumnScanLimit)
	for _, name := range index.Duplicates() {
		logger.Warnf(providers.TypeApp, "Sensor %q appears in more than one summary column, first one wins", name)
	}
	return index
}

func NewIngestService(config *structures.Config, workbook interfaces.WorkbookInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) IngestServiceInterface {
	return &IngestService{
		config:   config,
		workbook: workbook,
		metrics:  metrics,
		logger:   logger,
	}
}
