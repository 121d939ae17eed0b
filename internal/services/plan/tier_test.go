package plan

import (
	"testing"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

func sessionsWithPeaks(peaks ...int64) []models.Session {
	out := make([]models.Session, len(peaks))
	for i, p := range peaks {
		out[i] = models.Session{TokenCount: p}
	}
	return out
}

func TestResolve_FixedPlans(t *testing.T) {
	history := sessionsWithPeaks(5_000_000)
	tests := []struct {
		plan models.Plan
		want int64
	}{
		{models.PlanPro, DefaultProLimit},
		{models.PlanMax5, DefaultMax5Limit},
		{models.PlanMax20, DefaultMax20Limit},
	}
	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			if got := Resolve(tt.plan, history); got != tt.want {
				t.Errorf("Resolve(%s) = %d, want %d", tt.plan, got, tt.want)
			}
			if got := Resolve(tt.plan, nil); got != tt.want {
				t.Errorf("Resolve(%s, nil) = %d, want %d", tt.plan, got, tt.want)
			}
		})
	}
}

func TestResolve_Auto(t *testing.T) {
	tests := []struct {
		name    string
		history []models.Session
		want    int64
	}{
		{"EmptyHistory", nil, DefaultProLimit},
		{"AllZero", sessionsWithPeaks(0, 0), DefaultProLimit},
		{"UnderPro", sessionsWithPeaks(10_000, 30_000), DefaultProLimit},
		{"ExactlyPro", sessionsWithPeaks(DefaultProLimit), DefaultProLimit},
		{"JustOverPro", sessionsWithPeaks(DefaultProLimit + 1), DefaultMax5Limit},
		{"Max20Range", sessionsWithPeaks(1_000, 500_000, 300_000), DefaultMax20Limit},
		{"ExceedsAll", sessionsWithPeaks(2_000_000), DefaultMax20Limit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(models.PlanAuto, tt.history); got != tt.want {
				t.Errorf("Resolve(auto) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolve_UnknownPlanFallsBackToAuto(t *testing.T) {
	got := Resolve(models.Plan("team"), sessionsWithPeaks(100_000))
	if got != DefaultMax5Limit {
		t.Errorf("Resolve(unknown) = %d, want %d", got, DefaultMax5Limit)
	}
}

func TestResolve_EmptyTable(t *testing.T) {
	if got := (Table{}).Resolve(models.PlanPro, nil); got != 0 {
		t.Errorf("empty table Resolve() = %d, want 0", got)
	}
}

func TestDetect(t *testing.T) {
	table := DefaultTable()
	if got := table.Detect(nil); got != models.PlanPro {
		t.Errorf("Detect(nil) = %q, want pro", got)
	}
	if got := table.Detect(sessionsWithPeaks(600_000)); got != models.PlanMax20 {
		t.Errorf("Detect(600k) = %q, want max20", got)
	}
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []Tier
		wantErr bool
	}{
		{"Valid", []Tier{{models.PlanMax5, 88_000}, {models.PlanPro, 19_000}}, false},
		{"Empty", nil, true},
		{"AutoNotAllowed", []Tier{{models.PlanAuto, 1}}, true},
		{"UnknownPlan", []Tier{{models.Plan("team"), 1}}, true},
		{"ZeroLimit", []Tier{{models.PlanPro, 0}}, true},
		{"Duplicate", []Tier{{models.PlanPro, 1}, {models.PlanPro, 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tiers)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTable_SortsAscending(t *testing.T) {
	table, err := NewTable([]Tier{
		{models.PlanMax20, 140_000},
		{models.PlanPro, 7_000},
		{models.PlanMax5, 35_000},
	})
	if err != nil {
		t.Fatalf("NewTable() failed: %v", err)
	}
	for i := 1; i < len(table.Tiers); i++ {
		if table.Tiers[i].Limit < table.Tiers[i-1].Limit {
			t.Fatalf("tiers not sorted: %+v", table.Tiers)
		}
	}
	if got := table.Resolve(models.PlanAuto, sessionsWithPeaks(20_000)); got != 35_000 {
		t.Errorf("Resolve(auto) on custom table = %d, want 35000", got)
	}
}
