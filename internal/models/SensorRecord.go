package models

import "time"

// LogHeader is the fixed column layout of every "{sensor} Data" log sheet.
var LogHeader = []string{
	"ID", "Timestamp", "Tag",
	"Min Temp", "Mean Temp", "Max Temp",
	"Min Humidity", "Mean Humidity", "Max Humidity",
	"Bad Values",
}

// SensorRecord is one appended reading. Records are never mutated after append.
type SensorRecord struct {
	ID         int       `json:"id"`
	SensorName string    `json:"sensor"`
	Timestamp  time.Time `json:"timestamp"`
	Tag        string    `json:"tag"`
	Temps      [3]string `json:"temps"`
	Humids     [3]string `json:"humids"`
	BadValues  string    `json:"badValues"`
}

func NewSensorRecord(payload *IngestPayload, now time.Time) *SensorRecord {
	return &SensorRecord{
		SensorName: payload.Name,
		Timestamp:  now,
		Tag:        payload.Date,
		Temps:      payload.Temps(),
		Humids:     payload.Humids(),
		BadValues:  payload.BadValues,
	}
}

// LogSheetName returns the name of the log sheet holding a sensor's records.
func LogSheetName(sensorName string) string {
	return sensorName + " Data"
}
