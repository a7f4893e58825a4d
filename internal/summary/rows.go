package summary

import (
	"sensordigest/internal/models"
	"strconv"
	"strings"
)

// SplitRecipients splits a semicolon-delimited list, trimming and dropping empties.
func SplitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		email := strings.TrimSpace(part)
		if email == "" {
			continue
		}
		out = append(out, email)
	}
	return out
}

// ParseFlag reads a checkbox style cell. Anything unrecognised is false.
func ParseFlag(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err == nil {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on", "x":
		return true
	}
	return false
}

// FormatAlarmMessage turns literal "\n" sequences into HTML line breaks.
func FormatAlarmMessage(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "<br>")
}

// RowAt returns the typed view of one column of the snapshot.
func RowAt(snapshot *models.SummarySnapshot, column int) *models.SummaryRow {
	recipients := SplitRecipients(snapshot.Field(models.FieldEmailAddresses, column))
	return &models.SummaryRow{
		Column:          column,
		SensorName:      snapshot.HeaderAt(column),
		LastUpdate:      snapshot.Field(models.FieldLastUpdate, column),
		Stale:           ParseFlag(snapshot.Field(models.FieldSensorStaleEmail, column)),
		SendAlarm:       ParseFlag(snapshot.Field(models.FieldSendAlarmEmail, column)),
		AlarmMessage:    snapshot.Field(models.FieldAlarmMessage, column),
		AlarmRecipients: recipients,
		StaleRecipients: recipients,
		ChartTitle:      snapshot.Field(models.FieldChartTitles, column),
		LastAlarm:       snapshot.Field(models.FieldLastAlarm, column),
		LastStaleAlarm:  snapshot.Field(models.FieldLastStaleAlarm, column),
	}
}
