package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionDuration is the fixed length of a quota window.
const SessionDuration = 5 * time.Hour

// UnknownCategory is the bucket used for records without a model identifier.
const UnknownCategory = "unknown"

// Session is one bounded, hour-aligned usage window.
type Session struct {
	ID            string
	StartTime     time.Time
	EndTime       time.Time
	TokenCount    int64
	TokenLimit    int64
	Cost          decimal.Decimal
	RecordCount   int
	CategoryUsage map[string]int64
}

// IsActive reports whether now falls within [StartTime, EndTime).
func (s Session) IsActive(now time.Time) bool {
	return !now.Before(s.StartTime) && now.Before(s.EndTime)
}

// Duration returns the span of the window.
func (s Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// TimeUntilReset returns how long until the window closes, or zero when
// it already has.
func (s Session) TimeUntilReset(now time.Time) time.Duration {
	return max(s.EndTime.Sub(now), 0)
}

// RatedSession pairs a session with the burn rate observed at evaluation
// time. A nil Rate means there was no activity in the lookback window.
type RatedSession struct {
	Session
	Rate *float64
}

// HasRate reports whether a positive rate is attached.
func (r RatedSession) HasRate() bool {
	return r.Rate != nil && *r.Rate > 0
}
