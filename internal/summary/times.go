package summary

import (
	"fmt"
	"github.com/xuri/excelize/v2"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTime reads a timestamp cell written by the workbook or typed in by hand.
// Accepted forms are layout, RFC3339, a plain date and an Excel serial number.
func ParseTime(raw, layout string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, l := range []string{layout, time.RFC3339, "2006-01-02"} {
		if l == "" {
			continue
		}
		if t, err := time.ParseInLocation(l, raw, time.Local); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		// serials carry wall clock time without a zone
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time value %q", raw)
}

// ParseFrequencyDays reads the SummaryFrequency cell. Fractions are truncated.
func ParseFrequencyDays(raw string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("summary frequency %q is not a number", raw)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("summary frequency %q is out of range", raw)
	}
	return int(v), nil
}
