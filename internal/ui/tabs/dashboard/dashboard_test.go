package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/app"
	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/category"
)

var now = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func testSnapshot(id string, progress float64) models.Snapshot {
	rate := 250.0
	sess := models.Session{
		ID:          id,
		StartTime:   now.Add(-90 * time.Minute).Truncate(time.Hour),
		EndTime:     now.Add(-90 * time.Minute).Truncate(time.Hour).Add(models.SessionDuration),
		TokenCount:  22000,
		TokenLimit:  44000,
		Cost:        decimal.RequireFromString("0.5"),
		RecordCount: 3,
		CategoryUsage: map[string]int64{
			"claude-opus-4": 22000,
		},
	}
	return models.Snapshot{
		GeneratedAt:     now,
		Plan:            models.PlanPro,
		Sessions:        []models.Session{sess},
		Current:         &models.RatedSession{Session: sess, Rate: &rate},
		Rate:            &rate,
		Progress:        progress,
		RemainingTokens: 22000,
		HasProjection:   true,
		TimeRemaining:   88 * time.Minute,
		PredictedEnd:    now.Add(88 * time.Minute),
		Status:          models.Status{Message: "Burning fast", Severity: models.SeverityHigh},
		Breakdown: []models.CategoryBreakdown{
			{Category: "claude-opus-4", Info: category.Classify("claude-opus-4"), TokenCount: 22000, Percentage: 100},
		},
		PrimaryCategory: "claude-opus-4",
		RateSeries:      []float64{0, 10, 250, 300},
	}
}

func newLoadedState() *app.State {
	state := app.NewState()
	state.SetClock(func() time.Time { return now })
	state.SetLoading("initial", false)
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if !m.showChart {
		t.Error("rate chart should be shown by default")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState())
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Scanning usage logs...") {
		t.Errorf("loading view should show the spinner label, got %q", view)
	}
}

func TestModel_View_LoadingProgress(t *testing.T) {
	state := app.NewState()
	state.SetStats(models.IngestStats{FilesTracked: 3, RecordsParsed: 1200})
	m := New(state)
	m.SetSize(120, 40)

	if view := m.View(); !strings.Contains(view, "(1,200 records in 3 files)") {
		t.Errorf("loading view should show scan progress, got %q", view)
	}
}

func TestModel_View_Empty(t *testing.T) {
	m := New(newLoadedState())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "No usage sessions found") {
		t.Errorf("empty view missing hint, got %q", view)
	}
}

func TestModel_View_Session(t *testing.T) {
	state := newLoadedState()
	state.SetSnapshot(testSnapshot("s1", 0.5))
	m := New(state)
	m.SetSize(120, 200)

	view := m.View()
	for _, want := range []string{
		"Current Session",
		"ACTIVE",
		"22,000",
		"44,000",
		"$0.50",
		"250",
		"tokens/min",
		"Runs out in",
		"1h 28m",
		"Resets in",
		"Burning fast",
		"Model Breakdown",
		"Claude Opus",
		"Burn Rate (tokens/min)",
		"last 20m",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_View_EndedSession(t *testing.T) {
	state := newLoadedState()
	snap := testSnapshot("s1", 0.5)
	snap.GeneratedAt = snap.Current.EndTime.Add(time.Hour)
	snap.HasProjection = false
	snap.Rate = nil
	snap.RateSeries = make([]float64, 36)
	state.SetSnapshot(snap)

	m := New(state)
	m.SetSize(120, 200)

	view := m.View()
	for _, want := range []string{"ENDED", "1 hour ago", "idle", "No activity in the last 3h"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Runs out in") {
		t.Error("ended sessions have no projection")
	}
}

func TestModel_ToggleChart(t *testing.T) {
	state := newLoadedState()
	state.SetSnapshot(testSnapshot("s1", 0.5))
	m := New(state)
	m.SetSize(120, 200)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if m.showChart {
		t.Fatal("c should hide the chart")
	}
	view := m.View()
	if strings.Contains(view, "Burn Rate (tokens/min)") {
		t.Error("chart should be hidden")
	}
	if !strings.Contains(view, "(c to expand)") {
		t.Error("hidden chart should leave a sparkline")
	}
}

func TestModel_Animation(t *testing.T) {
	state := newLoadedState()
	state.SetSnapshot(testSnapshot("s1", 0.8))
	m := New(state)

	if !m.syncAnimationTarget(now) {
		t.Fatal("a fresh target should start an animation")
	}
	if m.usage.TargetPercent != 80 {
		t.Errorf("TargetPercent = %v, want 80", m.usage.TargetPercent)
	}

	// Halfway through, the quadratic ease-out has covered three quarters.
	m.stepAnimation(now.Add(animationDuration / 2))
	if got := m.usage.CurrentPercent; got < 59.99 || got > 60.01 {
		t.Errorf("CurrentPercent at half time = %v, want 60", got)
	}

	m.stepAnimation(now.Add(animationDuration))
	if m.usage.CurrentPercent != 80 {
		t.Errorf("CurrentPercent = %v, want 80", m.usage.CurrentPercent)
	}
	if m.syncAnimationTarget(now.Add(2 * animationDuration)) {
		t.Error("settled animation should not keep ticking")
	}

	// Retargeting starts from the current value.
	state.SetSnapshot(testSnapshot("s1", 0.9))
	m.syncAnimationTarget(now)
	if m.usage.StartPercent != 80 || m.usage.TargetPercent != 90 {
		t.Errorf("retarget = %+v", m.usage)
	}

	// A new window restarts from empty.
	state.SetSnapshot(testSnapshot("s2", 0.1))
	m.syncAnimationTarget(now)
	if m.usage.StartPercent != 0 || m.usage.TargetPercent != 10 || m.sessionID != "s2" {
		t.Errorf("new session = %+v (%s)", m.usage, m.sessionID)
	}
}

func TestModel_AnimationClampsOverLimit(t *testing.T) {
	state := newLoadedState()
	state.SetSnapshot(testSnapshot("s1", 1.7))
	m := New(state)
	m.syncAnimationTarget(now)
	if m.usage.TargetPercent != 100 {
		t.Errorf("TargetPercent = %v, want 100", m.usage.TargetPercent)
	}
}

func TestModel_Update(t *testing.T) {
	state := newLoadedState()
	m := New(state)

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}

	// Nothing to animate without a snapshot.
	if _, cmd := m.Update(app.TickMsg{Time: now}); cmd != nil {
		t.Error("tick without data should not schedule animation")
	}

	state.SetSnapshot(testSnapshot("s1", 0.5))
	if _, cmd := m.Update(app.SnapshotLoadedMsg{}); cmd == nil {
		t.Error("new snapshot should schedule an animation tick")
	}

	if cmd := m.handleAnimationTick(animationTickMsg(now.Add(time.Minute))); cmd != nil {
		t.Error("finished animation with nothing loading should stop ticking")
	}
	if m.usage.CurrentPercent != 50 {
		t.Errorf("CurrentPercent = %v, want 50", m.usage.CurrentPercent)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestShortDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3 * time.Hour, "3h"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h30m"},
		{20 * time.Minute, "20m"},
	}
	for _, tt := range tests {
		if got := shortDuration(tt.d); got != tt.want {
			t.Errorf("shortDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderRate(t *testing.T) {
	if got := renderRate(nil); !strings.Contains(got, "idle") {
		t.Errorf("renderRate(nil) = %q", got)
	}
	r := 1234.5
	if got := renderRate(&r); !strings.Contains(got, "1,234.5") {
		t.Errorf("renderRate(1234.5) = %q", got)
	}
}
