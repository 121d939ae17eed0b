package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		sev  models.Severity
		want lipgloss.Color
	}{
		{models.SeverityNeutral, Success},
		{models.SeverityLow, Success},
		{models.SeverityMedium, Warning},
		{models.SeverityHigh, Caution},
		{models.SeverityCritical, Error},
	}

	for _, tt := range tests {
		t.Run(tt.sev.String(), func(t *testing.T) {
			if got := SeverityColor(tt.sev); got != tt.want {
				t.Errorf("SeverityColor(%v) = %v, want %v", tt.sev, got, tt.want)
			}
		})
	}
}

func TestSeverityStyle_Bold(t *testing.T) {
	if SeverityStyle(models.SeverityLow).GetBold() {
		t.Error("low severity should not be bold")
	}
	if !SeverityStyle(models.SeverityCritical).GetBold() {
		t.Error("critical severity should be bold")
	}
}

func TestProgressStyle(t *testing.T) {
	tests := []struct {
		progress float64
		want     lipgloss.TerminalColor
	}{
		{0, Success},
		{0.29, Success},
		{0.30, Warning},
		{0.60, Caution},
		{0.85, Error},
		{1, Error},
	}

	for _, tt := range tests {
		if got := ProgressStyle(tt.progress).GetForeground(); got != tt.want {
			t.Errorf("ProgressStyle(%v) foreground = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestCategoryColor(t *testing.T) {
	if got := CategoryColor(models.CategoryInfo{Color: "#cc785c"}); got != lipgloss.Color("#cc785c") {
		t.Errorf("CategoryColor = %v", got)
	}
	if got := CategoryColor(models.CategoryInfo{}); got != Subtle {
		t.Errorf("CategoryColor(empty) = %v, want Subtle", got)
	}
}
