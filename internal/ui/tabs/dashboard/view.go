package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/projection"
	"github.com/j-veylop/burnrate-tui/internal/ui/components"
	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
)

const chartHeight = 8

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	snap := m.state.GetSnapshot()

	sections := []string{m.renderTitle()}
	if !snap.HasCurrent() {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections, m.renderSessionCard(snap))
		if len(snap.Breakdown) > 0 {
			sections = append(sections, m.renderBreakdownCard(snap))
		}
		if m.showChart {
			sections = append(sections, m.renderRateChart(snap))
		} else {
			sections = append(sections, m.renderRateSparkline(snap))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Burn Rate")
	subtitle := styles.HelpStyle.Render("Token usage across 5-hour session windows")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderLoading renders shimmering placeholders while the first scan runs.
func (m *Model) renderLoading() string {
	width := m.cardWidth()
	barWidth := max(width-10, 10)

	if stats := m.state.GetStats(); stats.FilesTracked > 0 {
		m.spinner.SetDetail(fmt.Sprintf("(%s records in %s files)",
			humanize.Comma(int64(stats.RecordsParsed)), humanize.Comma(int64(stats.FilesTracked))))
	}

	rows := []string{
		cardHeading("Current Session"),
		"",
		"  " + components.RenderLoadingBar(barWidth, m.animationFrame, styles.Primary),
		"  " + components.RenderLoadingBar(barWidth, m.animationFrame+20, styles.Secondary),
		"",
		"  " + m.spinner.ViewWithLabel(),
	}

	card := styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), card))
}

func (m *Model) renderEmpty() string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		cardHeading("Current Session"),
		"",
		fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No usage sessions found")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ Sessions appear once usage logs are written"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func cardHeading(title string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	return fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.MarginBottom(0).Render(title))
}

func row(label, value string) string {
	return "  " + styles.LabelStyle.Render(label) + value
}

// renderSessionCard renders the current session metrics.
func (m *Model) renderSessionCard(snap *models.Snapshot) string {
	cur := snap.Current
	now := snap.GeneratedAt
	width := m.cardWidth()
	barWidth := max(width-lipgloss.Width(styles.LabelStyle.Render(""))-16, 10)

	heading := cardHeading("Current Session")
	if cur.IsActive(now) {
		heading += " " + styles.ActiveBadgeStyle.Render("ACTIVE")
	} else {
		heading += " " + styles.BadgeStyle.Render("ENDED")
	}

	m.usageBar.SetWidth(barWidth)
	m.usageBar.SetPercent(m.displayPercent(snap))

	rows := []string{
		heading,
		"",
		row("Window", fmt.Sprintf("%s → %s", cur.StartTime.Format("Jan 2 15:04"), cur.EndTime.Format("15:04"))),
		row("Tokens", m.usageBar.View()),
		row("Used", fmt.Sprintf("%s / %s",
			styles.ValueStyle.Render(humanize.Comma(cur.TokenCount)),
			humanize.Comma(cur.TokenLimit))),
		row("Remaining", renderRemaining(snap.RemainingTokens)),
		row("Cost", styles.ValueStyle.Render("$"+cur.Cost.StringFixed(2))),
		row("Burn rate", renderRate(snap.Rate)),
	}

	if snap.HasProjection {
		rows = append(rows, row("Runs out in", fmt.Sprintf("%s %s",
			styles.SeverityStyle(snap.Status.Severity).Render(components.FormatDuration(snap.TimeRemaining)),
			styles.HelpStyle.Render("(at "+snap.PredictedEnd.Format("15:04")+")"))))
	}

	if cur.IsActive(now) {
		rows = append(rows, row("Resets in", components.ResetBar(cur.TimeUntilReset(now), models.SessionDuration, barWidth+9)))
	} else {
		rows = append(rows, row("Ended", styles.HelpStyle.Render(humanize.RelTime(cur.EndTime, now, "ago", "from now"))))
	}

	if snap.PrimaryCategory != "" {
		rows = append(rows, row("Primary model", snap.PrimaryCategory))
	}

	rows = append(rows, "", "  "+styles.SeverityStyle(snap.Status.Severity).Render(statusIcon(snap.Status.Severity)+" "+snap.Status.Message))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRemaining(remaining int64) string {
	if remaining <= 0 {
		return styles.ErrorTextStyle.Render("0 (limit reached)")
	}
	return styles.ValueStyle.Render(humanize.Comma(remaining))
}

func renderRate(rate *float64) string {
	if rate == nil || *rate <= 0 {
		return styles.HelpStyle.Render("idle")
	}
	style := styles.ValueStyle
	if *rate > projection.HighBurnRate {
		style = styles.SeverityStyle(models.SeverityHigh)
	}
	return style.Render(humanize.CommafWithDigits(*rate, 1)) + styles.HelpStyle.Render(" tokens/min")
}

func statusIcon(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical, models.SeverityHigh:
		return "▲"
	case models.SeverityMedium:
		return "●"
	default:
		return "○"
	}
}

// renderBreakdownCard renders per-category token shares for the current
// session.
func (m *Model) renderBreakdownCard(snap *models.Snapshot) string {
	width := m.cardWidth()

	labels := make([]string, len(snap.Breakdown))
	labelWidth := 0
	for i, b := range snap.Breakdown {
		labels[i] = b.Info.DisplayName
		if labels[i] == "" {
			labels[i] = b.Category
		}
		labelWidth = max(labelWidth, lipgloss.Width(labels[i]))
	}
	barWidth := max(width-labelWidth-28, 10)

	rows := []string{cardHeading("Model Breakdown"), ""}
	legend := make([]components.LegendItem, 0, len(snap.Breakdown))
	for i, b := range snap.Breakdown {
		color := styles.CategoryColor(b.Info)
		rows = append(rows, fmt.Sprintf("  %-*s %s %6.1f%% %10s",
			labelWidth, labels[i],
			components.RenderColorBar(b.Percentage/100, barWidth, color),
			b.Percentage,
			humanize.Comma(b.TokenCount)))
		legend = append(legend, components.LegendItem{Label: shortName(b), Color: color})
	}
	rows = append(rows, "", "  "+components.RenderLegend(legend))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func shortName(b models.CategoryBreakdown) string {
	if b.Info.ShortName != "" {
		return b.Info.ShortName
	}
	return b.Category
}

// renderRateChart plots the aggregate burn rate sampled every five minutes.
func (m *Model) renderRateChart(snap *models.Snapshot) string {
	width := m.cardWidth()
	window := time.Duration(len(snap.RateSeries)) * projection.SeriesStep

	rows := []string{cardHeading("Burn Rate (tokens/min)"), ""}
	if len(snap.RateSeries) == 0 || allZero(snap.RateSeries) {
		rows = append(rows, styles.HelpStyle.Render("  No activity in the last "+shortDuration(window)))
	} else {
		caption := fmt.Sprintf("last %s, %s steps", shortDuration(window), shortDuration(projection.SeriesStep))
		rows = append(rows, components.RenderLineChart(snap.RateSeries, max(width-18, 20), chartHeight, caption))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderRateSparkline is the one-line stand-in for the hidden chart.
func (m *Model) renderRateSparkline(snap *models.Snapshot) string {
	label := styles.LabelStyle.Render("Burn rate ")
	hint := styles.HelpStyle.Render(" (c to expand)")
	return "  " + label + components.RenderSparkline(snap.RateSeries, max(m.cardWidth()-40, 10)) + hint
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

// shortDuration drops the zero tails time.Duration.String leaves on round
// values: 3h0m0s becomes 3h.
func shortDuration(d time.Duration) string {
	s := strings.TrimSuffix(d.String(), "0s")
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
