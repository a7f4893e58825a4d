package models

import "time"

// Named regions of the summary sheet.
const (
	FieldEmailAddresses   = "EmailAddresses"
	FieldSensorStaleEmail = "SensorStaleEmail"
	FieldSendAlarmEmail   = "SendAlarmEmail"
	FieldAlarmMessage     = "AlarmMessage"
	FieldLastUpdate       = "LastUpdate"
	FieldLastAlarm        = "LastAlarm"
	FieldLastStaleAlarm   = "LastStaleAlarm"
	FieldChartTitles      = "ChartTitles"
	RegionLastSummary     = "LastSummary"
	RegionFrequency       = "SummaryFrequency"
	RegionSummaryBlock    = "SummaryBlock"
)

// RowFields lists the per-column named rows read into a snapshot.
var RowFields = []string{
	FieldEmailAddresses,
	FieldSensorStaleEmail,
	FieldSendAlarmEmail,
	FieldAlarmMessage,
	FieldLastUpdate,
	FieldLastAlarm,
	FieldLastStaleAlarm,
	FieldChartTitles,
}

type Cell struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

// SummarySnapshot is a read-only copy of the summary sheet taken once per run.
// Column numbers are 1-based sheet columns; Header[0] is column 1.
type SummarySnapshot struct {
	Header           []string            `json:"header"`
	Fields           map[string][]string `json:"fields"`
	Block            [][]Cell            `json:"block"`
	LastSummary      string              `json:"lastSummary"`
	SummaryFrequency string              `json:"summaryFrequency"`
}

// HeaderAt returns the header cell of a column or "" outside the row.
func (s *SummarySnapshot) HeaderAt(column int) string {
	if column < 1 || column > len(s.Header) {
		return ""
	}
	return s.Header[column-1]
}

// Field returns the value of a named row at a column or "" when absent.
func (s *SummarySnapshot) Field(name string, column int) string {
	values, ok := s.Fields[name]
	if !ok || column < 1 || column > len(values) {
		return ""
	}
	return values[column-1]
}

// BlockRows is the explicit number of rows read for the summary block.
func (s *SummarySnapshot) BlockRows() int {
	return len(s.Block)
}

// SummaryRow is the typed view of one sensor column.
type SummaryRow struct {
	Column          int
	SensorName      string
	LastUpdate      string
	Stale           bool
	SendAlarm       bool
	AlarmMessage    string
	AlarmRecipients []string
	StaleRecipients []string
	ChartTitle      string
	LastAlarm       string
	LastStaleAlarm  string
}

type DigestState struct {
	LastSummarySentAt    time.Time
	SummaryFrequencyDays int
}

// NextDue is the earliest moment after which a new digest is sent.
func (d DigestState) NextDue() time.Time {
	return d.LastSummarySentAt.AddDate(0, 0, d.SummaryFrequencyDays)
}
