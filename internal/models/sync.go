package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeRangeResult holds the per-period counters for one sync pass.
// Synced counts repositories processed without error; Created and Updated
// classify the repository-row upsert; Errors counts per-record failures
// plus whole-period source failures.
type TimeRangeResult struct {
	TimeRange TimeRange `json:"timeRange"`
	Synced    int       `json:"synced"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Errors    int       `json:"errors"`
}

// SyncResult is the report for a full sync run across all time ranges.
// Duration is wall-clock milliseconds. Partial failures never fail the run;
// they only show up in the per-period counters.
type SyncResult struct {
	SyncedAt   time.Time         `json:"syncedAt"`
	Duration   int64             `json:"duration"`
	TimeRanges []TimeRangeResult `json:"timeRanges"`
}

// String returns the JSON representation of the sync result.
func (r *SyncResult) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal sync result: %v"}`, err)
	}
	return string(data)
}
