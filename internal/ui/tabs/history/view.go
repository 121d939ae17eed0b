package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/projection"
	"github.com/j-veylop/burnrate-tui/internal/ui/components"
	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
)

// View renders the sessions tab.
func (m *Model) View() string {
	m.sync()

	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}
	if len(m.sessions) == 0 {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderSummary(),
		m.renderTrend(),
		m.table.View(),
		m.renderSelected(),
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading sessions..."))
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.HelpStyle.Render("No sessions in this time range."),
		styles.HelpStyle.Render("Press t to widen the range."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Sessions")

	var ranges []string
	for _, tr := range []models.TimeRange{
		models.TimeRange24Hours,
		models.TimeRange7Days,
		models.TimeRange30Days,
		models.TimeRangeAllTime,
	} {
		if tr == m.timeRange {
			ranges = append(ranges, styles.ActiveBadgeStyle.Render(tr.String()))
		} else {
			ranges = append(ranges, styles.BadgeStyle.Foreground(styles.TextMuted).Render(tr.String()))
		}
	}
	selector := strings.Join(ranges, " ") + "  " + styles.HelpStyle.Render("(t to change)")

	return lipgloss.JoinVertical(lipgloss.Left, title, selector, "")
}

func (m *Model) renderSummary() string {
	var tokens int64
	cost := decimal.Zero
	for _, s := range m.sessions {
		tokens += s.TokenCount
		cost = cost.Add(s.Cost)
	}

	parts := []string{
		styles.ValueStyle.Render(fmt.Sprintf("%d", len(m.sessions))) + styles.HelpStyle.Render(" sessions"),
		styles.ValueStyle.Render(humanize.Comma(tokens)) + styles.HelpStyle.Render(" tokens"),
		styles.ValueStyle.Render("$"+cost.StringFixed(2)) + styles.HelpStyle.Render(" spent"),
	}
	return strings.Join(parts, styles.HelpStyle.Render("  │  "))
}

// renderTrend draws per-session token totals, oldest on the left.
func (m *Model) renderTrend() string {
	values := make([]float64, len(m.sessions))
	for i, s := range m.sessions {
		values[len(m.sessions)-1-i] = float64(s.TokenCount)
	}

	width := max(m.width-30, 10)
	label := styles.HelpStyle.Render("Tokens per session ")
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		label+components.RenderColoredSparkline(values, width),
		"",
	)
}

// renderSelected shows the category split of the highlighted session.
func (m *Model) renderSelected() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}

	breakdown := projection.Breakdown(s)
	if len(breakdown) == 0 {
		return ""
	}

	values := make([]float64, len(breakdown))
	labels := make([]string, len(breakdown))
	colors := make([]lipgloss.Color, len(breakdown))
	for i, b := range breakdown {
		values[i] = float64(b.TokenCount)
		labels[i] = b.Info.DisplayName
		if labels[i] == "" {
			labels[i] = b.Category
		}
		colors[i] = styles.CategoryColor(b.Info)
	}

	heading := styles.SubTitleStyle.Render(fmt.Sprintf("Session %s", s.StartTime.Format("Jan 02 15:04")))
	limit := styles.LabelStyle.Render("Limit ") +
		components.RenderGradientBar(projection.Progress(s)*100, max(m.width-30, 10)) +
		" " + styles.ValueStyle.Render(limitPercent(s))
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		heading,
		limit,
		components.RenderBarChart(values, labels, colors, max(m.width-16, 30)),
	)
}
