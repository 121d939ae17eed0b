// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows sessions from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows sessions from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows sessions from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows every loaded session.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// Since returns the lower bound of the range relative to now.
// The zero time is returned for TimeRangeAllTime.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// FilterSessions keeps the sessions that ended inside the range.
// Input order is preserved.
func (t TimeRange) FilterSessions(sessions []Session, now time.Time) []Session {
	since := t.Since(now)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if since.IsZero() || s.EndTime.After(since) {
			out = append(out, s)
		}
	}
	return out
}
