// Package projection derives burn rate and budget projections from sessions.
package projection

import (
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Lookback is the trailing span the burn rate is measured over.
const Lookback = 60 * time.Minute

// AggregateRate returns tokens per minute over [now-Lookback, now],
// time-weighted across every session overlapping that span. Consumption is
// assumed uniform within a session. It returns nil when no session overlaps
// the lookback, which means no recent activity rather than a zero rate.
func AggregateRate(sessions []models.Session, now time.Time) *float64 {
	from := now.Add(-Lookback)

	var units, minutes float64
	for _, s := range sessions {
		duration := s.EndTime.Sub(s.StartTime).Minutes()
		if duration <= 0 {
			continue
		}

		lo := s.StartTime
		if from.After(lo) {
			lo = from
		}
		hi := s.EndTime
		if now.Before(hi) {
			hi = now
		}
		overlap := hi.Sub(lo).Minutes()
		if overlap <= 0 {
			continue
		}

		units += float64(max(s.TokenCount, 0)) * (overlap / duration)
		minutes += overlap
	}

	if minutes <= 0 {
		return nil
	}
	rate := units / minutes
	return &rate
}

// RateSeries samples AggregateRate at points instants spaced step apart and
// ending at now, oldest first. Samples with no activity are 0.
func RateSeries(sessions []models.Session, now time.Time, step time.Duration, points int) []float64 {
	if points <= 0 || step <= 0 {
		return nil
	}
	out := make([]float64, points)
	for i := 0; i < points; i++ {
		at := now.Add(-time.Duration(points-1-i) * step)
		if r := AggregateRate(sessions, at); r != nil {
			out[i] = *r
		}
	}
	return out
}

// WithRate pairs s with a copy of rate.
func WithRate(s models.Session, rate *float64) models.RatedSession {
	rs := models.RatedSession{Session: s}
	if rate != nil {
		v := *rate
		rs.Rate = &v
	}
	return rs
}
