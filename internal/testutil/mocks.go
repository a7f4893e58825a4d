package testutil

import (
	"context"
	"errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sync"
	"time"
)

const TimeLayout = "2006-01-02 15:04:05"

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns the number of entries logged at a level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MemoryWorkbook implements interfaces.WorkbookInterface over an in-memory snapshot.
// Setters write back into the snapshot so later runs observe them.
type MemoryWorkbook struct {
	mu       sync.Mutex
	snapshot *models.SummarySnapshot
	logs     map[string][]*models.SensorRecord
	order    []string

	SnapshotErr error
	AppendErr   error
	SetErr      error
	FlushErr    error

	Flushes       int
	SummaryWrites int
	UpdateStamps  []int
	AlarmStamps   []int
	StaleStamps   []int
}

// NewMemoryWorkbook creates a summary with the given sensor names starting at column 2.
func NewMemoryWorkbook(sensors ...string) *MemoryWorkbook {
	header := append([]string{""}, sensors...)
	return &MemoryWorkbook{
		snapshot: &models.SummarySnapshot{
			Header: header,
			Fields: map[string][]string{
				models.FieldEmailAddresses:   make([]string, len(header)),
				models.FieldSensorStaleEmail: make([]string, len(header)),
				models.FieldSendAlarmEmail:   make([]string, len(header)),
				models.FieldAlarmMessage:     make([]string, len(header)),
				models.FieldLastUpdate:       make([]string, len(header)),
				models.FieldLastAlarm:        make([]string, len(header)),
				models.FieldChartTitles:      make([]string, len(header)),
			},
		},
		logs: make(map[string][]*models.SensorRecord),
	}
}

// Set writes a named row value for a 1-based column.
func (m *MemoryWorkbook) Set(field string, column int, value string) *MemoryWorkbook {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(field, column, value)
	return m
}

func (m *MemoryWorkbook) setLocked(field string, column int, value string) {
	values := m.snapshot.Fields[field]
	for len(values) < column {
		values = append(values, "")
	}
	values[column-1] = value
	m.snapshot.Fields[field] = values
}

// EnableStaleAlarmRow defines the optional LastStaleAlarm row.
func (m *MemoryWorkbook) EnableStaleAlarmRow() *MemoryWorkbook {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Fields[models.FieldLastStaleAlarm] = make([]string, len(m.snapshot.Header))
	return m
}

func (m *MemoryWorkbook) SetDigestState(lastSummary, frequency string) *MemoryWorkbook {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.LastSummary = lastSummary
	m.snapshot.SummaryFrequency = frequency
	return m
}

// SetBlock replaces the summary block. Every cell gets the given color.
func (m *MemoryWorkbook) SetBlock(color string, rows ...[]string) *MemoryWorkbook {
	m.mu.Lock()
	defer m.mu.Unlock()
	block := make([][]models.Cell, len(rows))
	for i, row := range rows {
		block[i] = make([]models.Cell, len(row))
		for j, v := range row {
			block[i][j] = models.Cell{Value: v, Color: color}
		}
	}
	m.snapshot.Block = block
	return m
}

func (m *MemoryWorkbook) Field(field string, column int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Field(field, column)
}

func (m *MemoryWorkbook) LastSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.LastSummary
}

func (m *MemoryWorkbook) Snapshot() (*models.SummarySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	cp := &models.SummarySnapshot{
		Header:           append([]string(nil), m.snapshot.Header...),
		Fields:           make(map[string][]string, len(m.snapshot.Fields)),
		LastSummary:      m.snapshot.LastSummary,
		SummaryFrequency: m.snapshot.SummaryFrequency,
	}
	for k, v := range m.snapshot.Fields {
		cp.Fields[k] = append([]string(nil), v...)
	}
	for _, row := range m.snapshot.Block {
		cp.Block = append(cp.Block, append([]models.Cell(nil), row...))
	}
	return cp, nil
}

func (m *MemoryWorkbook) AppendRecord(rec *models.SensorRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	if _, ok := m.logs[rec.SensorName]; !ok {
		m.order = append(m.order, rec.SensorName)
	}
	rec.ID = len(m.logs[rec.SensorName]) + 1
	m.logs[rec.SensorName] = append([]*models.SensorRecord{rec}, m.logs[rec.SensorName]...)
	return rec.ID, nil
}

func (m *MemoryWorkbook) ReadRecords(sensorName string, limit int) ([]*models.SensorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.logs[sensorName]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return append([]*models.SensorRecord(nil), records...), nil
}

func (m *MemoryWorkbook) TrimRecords(sensorName string, keep int) ([]*models.SensorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.logs[sensorName]
	if keep < 0 || len(records) <= keep {
		return nil, nil
	}
	removed := append([]*models.SensorRecord(nil), records[keep:]...)
	m.logs[sensorName] = records[:keep]
	return removed, nil
}

func (m *MemoryWorkbook) Sensors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *MemoryWorkbook) SetLastUpdate(column int, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.UpdateStamps = append(m.UpdateStamps, column)
	m.setLocked(models.FieldLastUpdate, column, t.Format(TimeLayout))
	return nil
}

func (m *MemoryWorkbook) SetLastAlarm(column int, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.AlarmStamps = append(m.AlarmStamps, column)
	m.setLocked(models.FieldLastAlarm, column, t.Format(TimeLayout))
	return nil
}

func (m *MemoryWorkbook) SetLastStaleAlarm(column int, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if _, ok := m.snapshot.Fields[models.FieldLastStaleAlarm]; !ok {
		return nil
	}
	m.StaleStamps = append(m.StaleStamps, column)
	m.setLocked(models.FieldLastStaleAlarm, column, t.Format(TimeLayout))
	return nil
}

func (m *MemoryWorkbook) SetLastSummary(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.SummaryWrites++
	m.snapshot.LastSummary = t.Format(TimeLayout)
	return nil
}

func (m *MemoryWorkbook) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FlushErr != nil {
		return m.FlushErr
	}
	m.Flushes++
	return nil
}

func (m *MemoryWorkbook) Close() error { return nil }

// RecordingMailer implements mail.MailerInterface and keeps every message.
type RecordingMailer struct {
	mu      sync.Mutex
	Sent    []*models.Message
	Fail    map[string]bool
	Attempt int
}

var ErrSendFailed = errors.New("smtp: 550 mailbox unavailable")

func (m *RecordingMailer) Send(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempt++
	if m.Fail[msg.To] {
		return ErrSendFailed
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *RecordingMailer) To(email string) []*models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, msg := range m.Sent {
		if msg.To == email {
			out = append(out, msg)
		}
	}
	return out
}

// StaticCharts implements charts.ChartProviderInterface with fixed assets.
type StaticCharts struct {
	Assets []*models.ChartAsset
	Err    error
	Calls  int
}

// NewStaticCharts builds one tiny PNG-typed asset per title.
func NewStaticCharts(titles ...string) *StaticCharts {
	sc := &StaticCharts{}
	for _, title := range titles {
		sc.Assets = append(sc.Assets, &models.ChartAsset{
			Title:       title,
			ContentType: "image/png",
			Image:       []byte("png:" + title),
		})
	}
	return sc
}

func (s *StaticCharts) Charts() ([]*models.ChartAsset, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Assets, nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls by label.
type MockMetrics struct {
	mu       sync.Mutex
	Requests int
	Hits     int
	Misses   int
	Ingest   map[string]int
	Sent     map[string]int
	Failed   map[string]int
	Digests  map[string]int
	Errors   map[string]int
	Sweeps   int
}

func (m *MockMetrics) inc(target *map[string]int, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *target == nil {
		*target = make(map[string]int)
	}
	(*target)[key]++
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Misses++
}
func (m *MockMetrics) IncIngestTotal(result string)         { m.inc(&m.Ingest, result) }
func (m *MockMetrics) IncNotificationsSent(kind string)     { m.inc(&m.Sent, kind) }
func (m *MockMetrics) IncNotificationFailures(kind string)  { m.inc(&m.Failed, kind) }
func (m *MockMetrics) IncDigestRuns(outcome string)         { m.inc(&m.Digests, outcome) }
func (m *MockMetrics) ObserveSweepDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sweeps++
}

func (m *MockMetrics) IncPipelineErrors(entrypoint, kind string) {
	m.inc(&m.Errors, entrypoint+":"+kind)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}
