package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeDays(t *testing.T) {
	assert.Equal(t, 1, TimeRangeDaily.Days())
	assert.Equal(t, 7, TimeRangeWeekly.Days())
	assert.Equal(t, 30, TimeRangeMonthly.Days())
	assert.Equal(t, 365, TimeRangeYearly.Days())
	assert.Equal(t, 0, TimeRange("hourly").Days())
}

func TestTimeRangeIsValid(t *testing.T) {
	for _, timeRange := range AllTimeRanges() {
		assert.True(t, timeRange.IsValid(), timeRange.String())
	}
	assert.False(t, TimeRange("").IsValid())
	assert.False(t, TimeRange("hourly").IsValid())
	assert.False(t, TimeRange("Daily").IsValid(), "values are case sensitive")
}

func TestAllTimeRangesOrder(t *testing.T) {
	assert.Equal(t, []TimeRange{
		TimeRangeDaily,
		TimeRangeWeekly,
		TimeRangeMonthly,
		TimeRangeYearly,
	}, AllTimeRanges())
}
