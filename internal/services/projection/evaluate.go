package projection

import (
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Rate chart sampling.
const (
	SeriesStep   = 5 * time.Minute
	SeriesPoints = 36
)

// Evaluate runs the metric pipeline over sessions (most recent first) and
// returns the resulting snapshot. The most recent session is the current one.
func Evaluate(sessions []models.Session, now time.Time) models.Snapshot {
	snap := models.Snapshot{
		GeneratedAt: now,
		Sessions:    sessions,
		Status:      models.Status{Message: MsgExpired, Severity: models.SeverityNeutral},
	}
	if len(sessions) == 0 {
		return snap
	}

	rate := AggregateRate(sessions, now)
	current := WithRate(sessions[0], rate)

	snap.Current = &current
	snap.Rate = current.Rate
	snap.Progress = Progress(current.Session)
	snap.RemainingTokens = RemainingTokens(current.Session)
	snap.TimeRemaining, snap.HasProjection = TimeRemaining(current, now)
	if snap.HasProjection {
		snap.PredictedEnd = now.Add(snap.TimeRemaining)
	}
	snap.Status = EvaluateStatus(current, now)
	snap.Breakdown = Breakdown(current.Session)
	snap.PrimaryCategory, _ = PrimaryCategory(current.Session)
	snap.RateSeries = RateSeries(sessions, now, SeriesStep, SeriesPoints)
	return snap
}
