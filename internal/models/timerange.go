package models

// TimeRange identifies one of the rolling lookback windows a trending
// ranking is computed over.
type TimeRange string

const (
	TimeRangeDaily   TimeRange = "daily"
	TimeRangeWeekly  TimeRange = "weekly"
	TimeRangeMonthly TimeRange = "monthly"
	TimeRangeYearly  TimeRange = "yearly"
)

// AllTimeRanges returns the supported time ranges in sync order.
func AllTimeRanges() []TimeRange {
	return []TimeRange{TimeRangeDaily, TimeRangeWeekly, TimeRangeMonthly, TimeRangeYearly}
}

// Days returns the length of the lookback window in days.
func (t TimeRange) Days() int {
	switch t {
	case TimeRangeDaily:
		return 1
	case TimeRangeWeekly:
		return 7
	case TimeRangeMonthly:
		return 30
	case TimeRangeYearly:
		return 365
	default:
		return 0
	}
}

// IsValid reports whether t is one of the supported time ranges.
func (t TimeRange) IsValid() bool {
	return t.Days() > 0
}

func (t TimeRange) String() string {
	return string(t)
}
