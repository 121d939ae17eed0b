package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
	"github.com/j-veylop/burnrate-tui/internal/services/sessions"
)

func TestEvaluate_Empty(t *testing.T) {
	snap := Evaluate(nil, now)
	if snap.HasCurrent() {
		t.Error("empty snapshot should have no current session")
	}
	if snap.Status.Message != MsgExpired {
		t.Errorf("Status = %q, want %q", snap.Status.Message, MsgExpired)
	}
}

func TestEvaluate_ActiveSession(t *testing.T) {
	current := active(22_000, 44_000)
	current.CategoryUsage = map[string]int64{"claude-sonnet-4": 22_000}
	older := span(now.Add(-12*time.Hour), now.Add(-7*time.Hour), 5_000)

	snap := Evaluate([]models.Session{current, older}, now)
	if !snap.HasCurrent() {
		t.Fatal("snapshot has no current session")
	}
	if snap.Rate == nil {
		t.Fatal("Rate = nil, want a value")
	}
	// 22000 tokens over 300 minutes, 60 of them in the lookback.
	if !approx(*snap.Rate, 22_000.0/300, 0.01) {
		t.Errorf("Rate = %.2f, want %.2f", *snap.Rate, 22_000.0/300)
	}
	if snap.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", snap.Progress)
	}
	if snap.RemainingTokens != 22_000 {
		t.Errorf("RemainingTokens = %d, want 22000", snap.RemainingTokens)
	}
	if !snap.HasProjection || snap.PredictedEnd.IsZero() {
		t.Error("expected a projection for an active burning session")
	}
	if snap.Status.Severity != models.SeverityMedium {
		t.Errorf("Severity = %v, want medium", snap.Status.Severity)
	}
	if snap.PrimaryCategory != "claude-sonnet-4" {
		t.Errorf("PrimaryCategory = %q", snap.PrimaryCategory)
	}
	if len(snap.RateSeries) != SeriesPoints {
		t.Errorf("len(RateSeries) = %d, want %d", len(snap.RateSeries), SeriesPoints)
	}
	if snap.TotalTokens() != 27_000 {
		t.Errorf("TotalTokens = %d, want 27000", snap.TotalTokens())
	}
}

func TestService_Compute(t *testing.T) {
	svc := New(sessions.NewBuilder(plan.DefaultTable(), time.UTC))
	if svc.Cached() != nil {
		t.Error("Cached() before Compute should be nil")
	}
	if got := svc.DetectedPlan(); got != models.PlanPro {
		t.Errorf("DetectedPlan() with no data = %q, want pro", got)
	}

	records := []models.UsageRecord{
		{
			Timestamp:   now.Add(-20 * time.Minute),
			InputTokens: 100_000,
			Category:    "claude-opus-4",
			Cost:        decimal.RequireFromString("1.25"),
		},
	}
	snap := svc.Compute(records, models.PlanAuto, now)
	if snap.Plan != models.PlanAuto {
		t.Errorf("Plan = %q, want auto", snap.Plan)
	}
	if !snap.HasCurrent() || snap.Current.TokenLimit != plan.DefaultMax5Limit {
		t.Errorf("current session limit wrong: %+v", snap.Current)
	}
	cached := svc.Cached()
	if cached == nil || cached.GeneratedAt != now || len(cached.Sessions) != 1 {
		t.Fatalf("Cached() = %+v", cached)
	}
	if !cached.Sessions[0].Cost.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("cached session cost = %s, want 1.25", cached.Sessions[0].Cost)
	}
	if got := svc.DetectedPlan(); got != models.PlanMax5 {
		t.Errorf("DetectedPlan() = %q, want max5", got)
	}
}
