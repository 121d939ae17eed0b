package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/category"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
	"github.com/j-veylop/burnrate-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderPlansCard(),
		m.renderCategoriesCard(),
		m.renderLoaderCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, plans and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func (m *Model) card(title string, rows ...string) string {
	content := append([]string{styles.CardTitleStyle.Render(title)}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, content...),
	)
}

// renderConfigRow renders a configuration key-value row.
func renderConfigRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	cfg := m.config
	if cfg == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}

	var rows []string
	if len(cfg.DataDirs) == 0 {
		rows = append(rows, renderConfigRow("Log Dirs", "none"))
	}
	for i, dir := range cfg.DataDirs {
		label := "Log Dirs"
		if i > 0 {
			label = ""
		}
		rows = append(rows, renderConfigRow(label, dir))
	}

	rows = append(rows,
		renderConfigRow("Database", cfg.DatabasePath),
		renderConfigRow("Plans File", orDefault(cfg.PlansFile, "built-in")),
		renderConfigRow("Log File", orDefault(cfg.LogFile, "disabled")),
		renderConfigRow("Log Level", cfg.LogLevel),
		renderConfigRow("Timezone", orDefault(cfg.Timezone, "Local")),
		renderConfigRow("Refresh", cfg.RefreshInterval.String()),
		renderConfigRow("Poll", cfg.PollInterval.String()),
		renderConfigRow("History", fmt.Sprintf("%d days", cfg.HistoryDays)),
		renderConfigRow("Desktop Alerts", onOff(cfg.Notifications)),
	)
	return m.card("Configuration", rows...)
}

// renderPlansCard lists the tier table and marks the plan sessions are
// currently measured against.
func (m *Model) renderPlansCard() string {
	table := plan.DefaultTable()
	if m.config != nil && len(m.config.PlanTable.Tiers) > 0 {
		table = m.config.PlanTable
	}

	selected := m.state.GetPlan()
	effective := selected
	if selected == models.PlanAuto {
		effective = m.state.GetDetectedPlan()
	}

	rows := make([]string, 0, len(table.Tiers)+1)
	for _, tier := range table.Tiers {
		rows = append(rows, planRow(tier.Plan.String(), humanize.Comma(tier.Limit)+" tokens", tier.Plan == effective))
	}

	autoValue := "largest session picks the tier"
	if selected == models.PlanAuto && effective != "" && effective != models.PlanAuto {
		autoValue = "using " + effective.String()
	}
	rows = append(rows, planRow(models.PlanAuto.String(), autoValue, selected == models.PlanAuto))

	return m.card("Plans (per 5-hour window)", rows...)
}

func planRow(name, value string, active bool) string {
	marker := "  "
	nameStyle := styles.LabelStyle
	if active {
		marker = styles.FocusedStyle.Render("▸ ")
		nameStyle = nameStyle.Foreground(styles.Primary).Bold(true)
	}
	return marker + nameStyle.Render(name) + " " + styles.ValueStyle.Render(value)
}

// renderCategoriesCard renders the model families with their colours.
func (m *Model) renderCategoriesCard() string {
	known := category.Known()
	rows := make([]string, 0, len(known))
	for _, info := range known {
		swatch := lipgloss.NewStyle().Foreground(styles.CategoryColor(info)).Render("■")
		rows = append(rows, fmt.Sprintf("%s %s %s",
			swatch,
			styles.LabelStyle.Render(info.DisplayName),
			styles.HelpStyle.Render(info.ShortName)))
	}
	return m.card("Model Categories", rows...)
}

// renderLoaderCard renders the log loader counters.
func (m *Model) renderLoaderCard() string {
	stats := m.state.GetStats()

	lastScan := "never"
	if !stats.LastScan.IsZero() {
		lastScan = humanize.Time(stats.LastScan)
	}

	return m.card("Log Loader",
		renderConfigRow("Files Tracked", humanize.Comma(int64(stats.FilesTracked))),
		renderConfigRow("Records Parsed", humanize.Comma(int64(stats.RecordsParsed))),
		renderConfigRow("Records Stored", humanize.Comma(int64(stats.RecordsStored))),
		renderConfigRow("Lines Skipped", humanize.Comma(int64(stats.LinesSkipped))),
		renderConfigRow("Malformed", humanize.Comma(int64(stats.LinesMalformed))),
		renderConfigRow("Records in DB", humanize.Comma(int64(stats.RecordsInDatabase))),
		renderConfigRow("Last Scan", lastScan),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	sessions := len(m.state.GetSessions())
	tokens := m.state.GetSnapshot().TotalTokens()

	return m.card("About "+version.Name,
		renderConfigRow("Version", version.GetVersion()),
		renderConfigRow("Build Date", version.GetDate()),
		renderConfigRow("Git Commit", version.GetCommit()),
		renderConfigRow("Go Version", runtime.Version()),
		renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
		fmt.Sprintf("Sessions loaded: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", sessions))),
		fmt.Sprintf("Tokens loaded: %s", styles.InfoTextStyle.Render(humanize.Comma(int64(tokens)))),
	)
}
