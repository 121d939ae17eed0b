package models

import "time"

// Severity is the urgency level of a session status.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNeutral:
		return "neutral"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Status is the user-facing verdict for a session.
type Status struct {
	Message  string
	Severity Severity
}

// Snapshot is the result of one full aggregation pass: every session plus
// the derived metrics of the most recent one.
type Snapshot struct {
	GeneratedAt     time.Time
	Plan            Plan
	Sessions        []Session
	Current         *RatedSession
	Rate            *float64
	Progress        float64
	RemainingTokens int64

	// TimeRemaining and PredictedEnd are only meaningful when HasProjection
	// is set: the session is active and burning tokens.
	HasProjection bool
	TimeRemaining time.Duration
	PredictedEnd  time.Time

	Status          Status
	Breakdown       []CategoryBreakdown
	PrimaryCategory string
	RateSeries      []float64
}

// HasCurrent reports whether the snapshot contains at least one session.
func (s *Snapshot) HasCurrent() bool {
	return s != nil && s.Current != nil
}

// TotalTokens sums token counts across every session in the snapshot.
func (s *Snapshot) TotalTokens() int64 {
	if s == nil {
		return 0
	}
	var total int64
	for _, sess := range s.Sessions {
		total += sess.TokenCount
	}
	return total
}
