package interfaces

import (
	"sensordigest/internal/models"
	"time"
)

// WorkbookInterface is the storage collaborator: a summary sheet addressed by named
// regions plus one append-only log per sensor.
type WorkbookInterface interface {
	Snapshot() (*models.SummarySnapshot, error)
	AppendRecord(rec *models.SensorRecord) (int, error)
	ReadRecords(sensorName string, limit int) ([]*models.SensorRecord, error)
	TrimRecords(sensorName string, keep int) ([]*models.SensorRecord, error)
	Sensors() []string
	SetLastUpdate(column int, t time.Time) error
	SetLastAlarm(column int, t time.Time) error
	SetLastStaleAlarm(column int, t time.Time) error
	SetLastSummary(t time.Time) error
	Flush() error
	Close() error
}
