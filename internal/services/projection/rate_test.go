package projection

import (
	"math"
	"testing"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func span(start, end time.Time, tokens int64) models.Session {
	return models.Session{StartTime: start, EndTime: end, TokenCount: tokens}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAggregateRate_AdjacentSessions(t *testing.T) {
	sessions := []models.Session{
		span(now.Add(-60*time.Minute), now.Add(-30*time.Minute), 900),
		span(now.Add(-30*time.Minute), now, 1500),
	}
	got := AggregateRate(sessions, now)
	if got == nil {
		t.Fatal("AggregateRate() = nil, want 40")
	}
	if !approx(*got, 40, 1) {
		t.Errorf("AggregateRate() = %.2f, want 40", *got)
	}
}

func TestAggregateRate_OnlyLookbackCounts(t *testing.T) {
	sessions := []models.Session{
		span(now.Add(-120*time.Minute), now, 7200),
	}
	got := AggregateRate(sessions, now)
	if got == nil || !approx(*got, 60, 1) {
		t.Errorf("AggregateRate() = %v, want 60", got)
	}
}

func TestAggregateRate_Nil(t *testing.T) {
	tests := []struct {
		name     string
		sessions []models.Session
	}{
		{"Empty", nil},
		{"Stale", []models.Session{span(now.Add(-3*time.Hour), now.Add(-2*time.Hour), 500)}},
		{"Future", []models.Session{span(now.Add(time.Hour), now.Add(2*time.Hour), 500)}},
		{"ZeroDuration", []models.Session{span(now.Add(-10*time.Minute), now.Add(-10*time.Minute), 500)}},
		{"EndsExactlyAtLookback", []models.Session{span(now.Add(-2*time.Hour), now.Add(-time.Hour), 500)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateRate(tt.sessions, now); got != nil {
				t.Errorf("AggregateRate() = %v, want nil", *got)
			}
		})
	}
}

func TestAggregateRate_IdleActiveSessionIsZero(t *testing.T) {
	sessions := []models.Session{span(now.Add(-time.Hour), now.Add(4*time.Hour), 0)}
	got := AggregateRate(sessions, now)
	if got == nil {
		t.Fatal("AggregateRate() = nil, want 0")
	}
	if *got != 0 {
		t.Errorf("AggregateRate() = %v, want 0", *got)
	}
}

func TestAggregateRate_Bounds(t *testing.T) {
	sessions := []models.Session{
		span(now.Add(-4*time.Hour), now.Add(time.Hour), 30_000),
		span(now.Add(-9*time.Hour), now.Add(-4*time.Hour), 12_000),
		span(now.Add(-40*time.Minute), now.Add(-10*time.Minute), 6_000),
	}
	var maxRate float64
	for _, s := range sessions {
		maxRate = max(maxRate, float64(s.TokenCount)/s.Duration().Minutes())
	}
	got := AggregateRate(sessions, now)
	if got == nil {
		t.Fatal("AggregateRate() = nil")
	}
	if *got < 0 || *got > maxRate {
		t.Errorf("AggregateRate() = %.2f, want within [0, %.2f]", *got, maxRate)
	}
}

func TestRateSeries(t *testing.T) {
	sessions := []models.Session{span(now.Add(-30*time.Minute), now, 1500)}
	series := RateSeries(sessions, now, 30*time.Minute, 4)
	if len(series) != 4 {
		t.Fatalf("len(series) = %d, want 4", len(series))
	}
	// Samples at now-90m and now-60m see nothing; the last one sees 50/min.
	if series[0] != 0 || series[1] != 0 {
		t.Errorf("early samples = %v, want zeros", series[:2])
	}
	if !approx(series[3], 50, 0.01) {
		t.Errorf("last sample = %.2f, want 50", series[3])
	}
	if RateSeries(sessions, now, 0, 4) != nil {
		t.Error("RateSeries with zero step should be nil")
	}
}

func TestWithRate_CopiesValue(t *testing.T) {
	rate := 12.5
	rs := WithRate(models.Session{TokenCount: 1}, &rate)
	rate = 99
	if rs.Rate == nil || *rs.Rate != 12.5 {
		t.Errorf("WithRate did not copy rate: %v", rs.Rate)
	}
	if WithRate(models.Session{}, nil).Rate != nil {
		t.Error("WithRate(nil) should keep nil rate")
	}
}
