// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Color definitions for the burnrate theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Caution = lipgloss.Color("208") // Orange
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// Gradient endpoints for the token bar (calm to hot) and the reset bar.
const (
	UsageGradientFrom = "#51cf66"
	UsageGradientTo   = "#ff6b6b"
	TimeGradientFrom  = "#ffd93d"
	TimeGradientTo    = "#6c5ce7"
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// LabelStyle styles the left column of key/value rows.
var LabelStyle = lipgloss.NewStyle().
	Width(18).
	Foreground(TextMuted)

// ValueStyle styles the right column of key/value rows.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1)

var ActiveBadgeStyle = BadgeStyle.
	Foreground(lipgloss.Color("229")).
	Background(Success)

var PlanBadgeStyle = BadgeStyle.
	Foreground(lipgloss.Color("229")).
	Background(Secondary)

// SeverityColor maps a status severity to its display color.
func SeverityColor(sev models.Severity) lipgloss.Color {
	switch sev {
	case models.SeverityLow:
		return Success
	case models.SeverityMedium:
		return Warning
	case models.SeverityHigh:
		return Caution
	case models.SeverityCritical:
		return Error
	default:
		return Success
	}
}

// SeverityStyle returns the text style for a status severity.
func SeverityStyle(sev models.Severity) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(SeverityColor(sev))
	if sev >= models.SeverityHigh {
		s = s.Bold(true)
	}
	return s
}

// ProgressStyle colors a usage fraction in [0, 1] the same way the status
// thresholds do.
func ProgressStyle(progress float64) lipgloss.Style {
	switch {
	case progress >= 0.85:
		return SeverityStyle(models.SeverityCritical)
	case progress >= 0.60:
		return SeverityStyle(models.SeverityHigh)
	case progress >= 0.30:
		return SeverityStyle(models.SeverityMedium)
	default:
		return SeverityStyle(models.SeverityLow)
	}
}

// CategoryColor returns the color of a category, falling back to Subtle.
func CategoryColor(info models.CategoryInfo) lipgloss.Color {
	if info.Color == "" {
		return Subtle
	}
	return lipgloss.Color(info.Color)
}
