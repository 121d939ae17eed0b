// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/burnrate-tui/internal/logger"
	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
)

const percentWidth = 6

// QuotaBar renders token usage as a gradient progress bar with a percentage.
type QuotaBar struct {
	progress progress.Model
	percent  float64
}

// NewQuotaBar creates a quota bar with the usage gradient.
func NewQuotaBar(width int) QuotaBar {
	p := progress.New(
		progress.WithScaledGradient(styles.UsageGradientFrom, styles.UsageGradientTo),
		progress.WithWidth(max(width, 5)),
		progress.WithoutPercentage(),
	)
	return QuotaBar{progress: p}
}

// SetPercent sets the displayed percentage (0-100).
func (q *QuotaBar) SetPercent(percent float64) {
	q.percent = clampPercent(percent)
}

// Percent returns the displayed percentage.
func (q QuotaBar) Percent() float64 {
	return q.percent
}

// SetWidth sets the progress bar width.
func (q *QuotaBar) SetWidth(width int) {
	q.progress.Width = max(width, 5)
}

// View renders the bar at the current percentage.
func (q QuotaBar) View() string {
	bar := q.progress.ViewAs(q.percent / 100)
	percentStr := styles.ProgressStyle(q.percent / 100).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", q.percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// ResetBar renders the elapsed part of a session window. The bar fills up
// as the reset approaches.
func ResetBar(remaining, period time.Duration, width int) string {
	elapsed := 1.0
	if period > 0 {
		elapsed = 1 - float64(remaining)/float64(period)
	}
	elapsed = min(max(elapsed, 0), 1)

	timeStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(8).
		Align(lipgloss.Right).
		Render(FormatDuration(remaining))

	return RenderTimeBarChars(elapsed, max(width-9, 5)) + " " + timeStr
}

// RenderTimeBarChars renders just the bar characters for a time bar.
func RenderTimeBarChars(fraction float64, width int) string {
	return renderGradient(fraction, width, styles.TimeGradientFrom, styles.TimeGradientTo)
}

// RenderGradientBar renders a usage bar for percent (0-100).
func RenderGradientBar(percent float64, width int) string {
	return renderGradient(clampPercent(percent)/100, width, styles.UsageGradientFrom, styles.UsageGradientTo)
}

// RenderColorBar renders a single-color bar for fraction (0-1).
func RenderColorBar(fraction float64, width int, color lipgloss.Color) string {
	if width < 1 {
		return ""
	}
	filled := min(max(int(float64(width)*fraction), 0), width)
	fill := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", width-filled))
	return fill + rest
}

func renderGradient(fraction float64, width int, from, to string) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*fraction), 0), width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(from, to, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// RenderLoadingBar renders a shimmering placeholder bar for the given
// animation frame.
func RenderLoadingBar(width, frame int, accent lipgloss.Color) string {
	if width < 1 {
		return ""
	}

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(accent).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

// FormatDuration renders d as "2h 05m", or "1d 03h" past a day.
// Non-positive durations render as "---".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "---"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h >= 24 {
		return fmt.Sprintf("%dd %02dh", h/24, h%24)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
