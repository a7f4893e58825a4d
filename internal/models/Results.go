package models

import "time"

type IngestResult struct {
	RecordID      int
	Column        int
	SummaryUpdate bool
	Err           error
}

type ViolationResult struct {
	SensorName string `json:"sensor"`
	Column     int    `json:"column"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Stamped    bool   `json:"stamped"`
}

type StalenessResult struct {
	StaleColumns []int    `json:"staleColumns"`
	Recipients   []string `json:"recipients"`
	Sent         int      `json:"sent"`
	Failed       int      `json:"failed"`
}

type DigestResult struct {
	Skipped    bool      `json:"skipped"`
	Reason     string    `json:"reason,omitempty"`
	NextDue    time.Time `json:"nextDue,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
}

type ArchiveResult struct {
	Sensor string `json:"sensor"`
	Rows   int    `json:"rows"`
	File   string `json:"file"`
}

type SweepResult struct {
	StartedAt time.Time        `json:"startedAt"`
	Staleness *StalenessResult `json:"staleness,omitempty"`
	Digest    *DigestResult    `json:"digest,omitempty"`
	Archived  []*ArchiveResult `json:"archived,omitempty"`
	Errors    []string         `json:"errors,omitempty"`
}
