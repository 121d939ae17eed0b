// Package sessions groups usage records into fixed five hour windows.
package sessions

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
)

// Builder groups records into hour-aligned windows.
type Builder struct {
	// Table resolves the token limit attached to every window.
	Table plan.Table
	// Location is the zone whose wall-clock hours windows align to.
	// Nil means UTC.
	Location *time.Location
}

// NewBuilder returns a builder over table that aligns windows in loc.
func NewBuilder(table plan.Table, loc *time.Location) *Builder {
	return &Builder{Table: table, Location: loc}
}

// BuildSessions groups records using the default tier table and UTC hours.
func BuildSessions(records []models.UsageRecord, sel models.Plan) []models.Session {
	return NewBuilder(plan.DefaultTable(), time.UTC).Build(records, sel)
}

// BuildHourAlignedSessions groups records aligning each window to the
// wall-clock hour in loc. For zones with whole-hour offsets the result is
// identical to BuildSessions.
func BuildHourAlignedSessions(records []models.UsageRecord, sel models.Plan, loc *time.Location) []models.Session {
	return NewBuilder(plan.DefaultTable(), loc).Build(records, sel)
}

// Build returns the windows covering records, most recent first.
// The input slice is not modified.
func (b *Builder) Build(records []models.UsageRecord, sel models.Plan) []models.Session {
	if len(records) == 0 {
		return nil
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, c models.UsageRecord) int {
		return a.Timestamp.Compare(c.Timestamp)
	})

	var out []models.Session
	current := b.open(sorted[0].Timestamp)
	for _, rec := range sorted {
		if !rec.Timestamp.Before(current.EndTime) {
			out = append(out, current)
			current = b.open(rec.Timestamp)
		}
		accumulate(&current, rec)
	}
	out = append(out, current)

	limit := b.Table.Resolve(sel, out)
	for i := range out {
		out[i].TokenLimit = limit
	}

	slices.Reverse(out)
	return out
}

func (b *Builder) open(ts time.Time) models.Session {
	start := b.floorHour(ts)
	return models.Session{
		ID:            SessionID(start),
		StartTime:     start,
		EndTime:       start.Add(models.SessionDuration),
		Cost:          decimal.Zero,
		CategoryUsage: make(map[string]int64),
	}
}

// floorHour truncates ts to the start of its hour in the builder's zone.
// time.Truncate works on absolute time, which is wrong for zones with
// half-hour offsets, so the wall clock is rebuilt explicitly.
func (b *Builder) floorHour(ts time.Time) time.Time {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	t := ts.In(loc)
	floored := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	if floored.After(t) {
		// DST fold: the rebuilt wall clock landed in the later instance.
		floored = floored.Add(-time.Hour)
	}
	return floored
}

func accumulate(s *models.Session, rec models.UsageRecord) {
	total := rec.TotalTokens()
	s.TokenCount += total
	s.Cost = s.Cost.Add(rec.Cost)
	s.RecordCount++

	key := strings.TrimSpace(rec.Category)
	if key == "" {
		key = models.UnknownCategory
	}
	s.CategoryUsage[key] += total
}

// SessionID derives a stable identifier from a window start.
func SessionID(start time.Time) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%d", start.Unix()))
	return fmt.Sprintf("ses_%x", hash[:8])
}
