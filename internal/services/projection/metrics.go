package projection

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/category"
)

// Status thresholds. Progress is a fraction of the token limit and the
// rate threshold is in tokens per minute.
const (
	CriticalProgress = 0.85
	HighProgress     = 0.60
	MediumProgress   = 0.30
	HighBurnRate     = 100.0
)

// Status messages.
const (
	MsgExpired  = "Session expired"
	MsgCritical = "Limit approaching — slow down"
	MsgHighBurn = "High burn rate detected"
	MsgSmooth   = "Smooth sailing…"
	MsgSteady   = "Steady usage pace"
)

// Progress returns TokenCount/TokenLimit clamped to [0, 1].
// A non-positive limit yields 0.
func Progress(s models.Session) float64 {
	if s.TokenLimit <= 0 {
		return 0
	}
	p := float64(s.TokenCount) / float64(s.TokenLimit)
	if math.IsNaN(p) {
		return 0
	}
	return min(max(p, 0), 1)
}

// RemainingTokens returns the unused budget, never negative.
func RemainingTokens(s models.Session) int64 {
	return max(s.TokenLimit-s.TokenCount, 0)
}

// TimeRemaining returns how long the remaining budget lasts at the current
// rate. ok is false unless the session is active and burning tokens.
func TimeRemaining(rs models.RatedSession, now time.Time) (time.Duration, bool) {
	if !rs.IsActive(now) || !rs.HasRate() {
		return 0, false
	}
	// A tiny rate against a large budget overflows time.Duration.
	ns := float64(RemainingTokens(rs.Session)) / *rs.Rate * float64(time.Minute)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(ns), true
}

// PredictedEnd returns the instant the budget runs out under the same
// conditions as TimeRemaining.
func PredictedEnd(rs models.RatedSession, now time.Time) (time.Time, bool) {
	d, ok := TimeRemaining(rs, now)
	if !ok {
		return time.Time{}, false
	}
	return now.Add(d), true
}

// Breakdown returns the per-category share of s, largest first.
// Counts are clamped to [0, TokenCount] and categories left with nothing are
// omitted, since upstream totals are not guaranteed to agree.
func Breakdown(s models.Session) []models.CategoryBreakdown {
	out := make([]models.CategoryBreakdown, 0, len(s.CategoryUsage))
	for name, raw := range s.CategoryUsage {
		count := min(max(raw, 0), max(s.TokenCount, 0))
		if count == 0 {
			continue
		}

		var pct float64
		if s.TokenCount > 0 {
			pct = min(max(100*float64(count)/float64(s.TokenCount), 0), 100)
		}
		out = append(out, models.CategoryBreakdown{
			Category:   name,
			Info:       category.Classify(name),
			TokenCount: count,
			Percentage: pct,
		})
	}

	slices.SortFunc(out, func(a, b models.CategoryBreakdown) int {
		if c := cmp.Compare(b.TokenCount, a.TokenCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Info.Tier, a.Info.Tier); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// PrimaryCategory returns the category with the most tokens. Ties go to the
// more capable category, then to the lexically smaller name.
func PrimaryCategory(s models.Session) (string, bool) {
	var (
		best      string
		bestCount int64 = -1
		bestTier  int
		found     bool
	)
	for name, count := range s.CategoryUsage {
		tier := category.Classify(name).Tier
		better := !found ||
			count > bestCount ||
			(count == bestCount && tier > bestTier) ||
			(count == bestCount && tier == bestTier && name < best)
		if better {
			best, bestCount, bestTier, found = name, count, tier, true
		}
	}
	return best, found
}

// EvaluateStatus maps a session to its user-facing status. The checks run in
// order: expiry, critical progress, rate escalation, then progress brackets.
func EvaluateStatus(rs models.RatedSession, now time.Time) models.Status {
	if !rs.IsActive(now) {
		return models.Status{Message: MsgExpired, Severity: models.SeverityNeutral}
	}

	progress := Progress(rs.Session)
	switch {
	case progress > CriticalProgress:
		return models.Status{Message: MsgCritical, Severity: models.SeverityCritical}
	case rs.Rate != nil && *rs.Rate > HighBurnRate:
		return models.Status{Message: MsgHighBurn, Severity: models.SeverityHigh}
	case progress < MediumProgress:
		return models.Status{Message: MsgSmooth, Severity: models.SeverityLow}
	case progress < HighProgress:
		return models.Status{Message: MsgSteady, Severity: models.SeverityMedium}
	default:
		return models.Status{Message: MsgHighBurn, Severity: models.SeverityHigh}
	}
}
