// Package history provides the sessions tab listing past usage windows.
package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/burnrate-tui/internal/app"
	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/category"
	"github.com/j-veylop/burnrate-tui/internal/services/projection"
	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
)

// headerHeight is the number of lines rendered above the table.
const headerHeight = 12

// keyMap defines the key bindings specific to the sessions tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
}

// defaultKeyMap returns the default key bindings for the sessions tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous session"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next session"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "newest"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "oldest"),
		),
	}
}

// Model represents the sessions tab state.
type Model struct {
	state  *app.State
	width  int
	height int
	keys   keyMap
	table  table.Model

	timeRange models.TimeRange

	// sessions are the rows currently shown, most recent first.
	sessions []models.Session
	now      time.Time

	builtFor   time.Time
	builtRange models.TimeRange
	built      bool
}

// New creates a new sessions model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(table.Styles{
			Header:   styles.TableHeaderStyle,
			Cell:     styles.TableCellStyle,
			Selected: styles.TableSelectedStyle,
		}),
	)

	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		table:     t,
		timeRange: models.TimeRange7Days,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Start", Width: 13},
		{Title: "End", Width: 6},
		{Title: "Tokens", Width: 11},
		{Title: "% Limit", Width: 8},
		{Title: "Cost", Width: 9},
		{Title: "Model", Width: 10},
		{Title: "Active", Width: 6},
	}
}

// Init initializes the sessions tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the sessions tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case app.TabSwitchMsg:
		if msg.Tab == app.TabSessions {
			m.sync()
		}
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	m.sync()

	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.sync()
		m.table.GotoTop()
		return nil
	case key.Matches(msg, m.keys.Top):
		m.table.GotoTop()
		return nil
	case key.Matches(msg, m.keys.Bottom):
		m.table.GotoBottom()
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// sync rebuilds the rows when a new snapshot arrived or the range changed.
func (m *Model) sync() {
	snap := m.state.GetSnapshot()
	if snap == nil {
		m.sessions = nil
		m.table.SetRows(nil)
		m.built = false
		return
	}
	if m.built && snap.GeneratedAt.Equal(m.builtFor) && m.timeRange == m.builtRange {
		return
	}

	m.now = snap.GeneratedAt
	m.sessions = m.timeRange.FilterSessions(snap.Sessions, m.now)
	slices.SortFunc(m.sessions, func(a, b models.Session) int {
		return b.StartTime.Compare(a.StartTime)
	})

	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		rows[i] = sessionRow(s, m.now)
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}

	m.builtFor = snap.GeneratedAt
	m.builtRange = m.timeRange
	m.built = true
}

func sessionRow(s models.Session, now time.Time) table.Row {
	active := ""
	if s.IsActive(now) {
		active = "●"
	}
	return table.Row{
		s.StartTime.Format("Jan 02 15:04"),
		s.EndTime.Format("15:04"),
		humanize.Comma(s.TokenCount),
		limitPercent(s),
		"$" + s.Cost.StringFixed(2),
		primaryModel(s),
		active,
	}
}

// limitPercent is the share of the limit used, unclamped so overruns show.
func limitPercent(s models.Session) string {
	if s.TokenLimit <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(s.TokenCount)/float64(s.TokenLimit)*100)
}

func primaryModel(s models.Session) string {
	name, ok := projection.PrimaryCategory(s)
	if !ok {
		return "-"
	}
	if short := category.Classify(name).ShortName; short != "" {
		return short
	}
	return name
}

// Selected returns the highlighted session.
func (m *Model) Selected() (models.Session, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return models.Session{}, false
	}
	return m.sessions[i], true
}

// SetSize sets the available size for the sessions tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(max(width-6, 20))
	m.table.SetHeight(max(height-headerHeight-8, 5))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Up,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Bottom},
	}
}
