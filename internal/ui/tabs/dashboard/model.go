// Package dashboard provides the live session tab for burnrate-tui.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/burnrate-tui/internal/app"
	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/ui/components"
)

const animationDuration = 1500 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	ToggleChart key.Binding
	ScrollDown  key.Binding
	ScrollUp    key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleChart: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle rate chart"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
	}
}

// AnimationState tracks the state of an animation.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	usage          AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	usageBar       components.QuotaBar
	width          int
	height         int
	animationFrame int
	showChart      bool

	// sessionID is the current session the animation was last aimed at.
	sessionID string
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:     state,
		spinner:   components.NewSpinner("Scanning usage logs..."),
		usageBar:  components.NewQuotaBar(40),
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		showChart: true,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.SnapshotLoadedMsg, app.PlanChangedMsg, app.ServiceEventMsg, app.TickMsg:
		// The root model forwards only to the active tab, so the periodic
		// tick also catches snapshots that arrived while hidden.
		if m.syncAnimationTarget(m.state.Now()) {
			cmds = append(cmds, animationTickCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	m.syncAnimationTarget(now)
	m.stepAnimation(now)

	if m.usage.CurrentPercent != m.usage.TargetPercent || m.state.AnyLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleChart):
		m.showChart = !m.showChart
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// syncAnimationTarget aims the usage bar at the latest snapshot and reports
// whether the bar still has to move.
func (m *Model) syncAnimationTarget(now time.Time) bool {
	snap := m.state.GetSnapshot()
	if !snap.HasCurrent() {
		return false
	}

	// A new window starts the bar from empty instead of sliding down from
	// the previous session.
	if snap.Current.ID != m.sessionID {
		m.sessionID = snap.Current.ID
		m.usage = AnimationState{StartTime: now}
	}

	target := min(max(snap.Progress*100, 0), 100)
	if target != m.usage.TargetPercent {
		m.usage.StartPercent = m.usage.CurrentPercent
		m.usage.TargetPercent = target
		m.usage.StartTime = now
	}

	return m.usage.CurrentPercent != m.usage.TargetPercent
}

func (m *Model) stepAnimation(now time.Time) {
	a := &m.usage
	if a.CurrentPercent == a.TargetPercent {
		return
	}

	elapsed := now.Sub(a.StartTime)
	if elapsed >= animationDuration {
		a.CurrentPercent = a.TargetPercent
		return
	}

	progress := elapsed.Seconds() / animationDuration.Seconds()
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*ease
}

// displayPercent is the animated usage percentage, or the raw one before
// the first animation step.
func (m *Model) displayPercent(snap *models.Snapshot) float64 {
	if snap.Current.ID == m.sessionID {
		return m.usage.CurrentPercent
	}
	return min(max(snap.Progress*100, 0), 100)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleChart,
		m.keys.ScrollDown,
		m.keys.ScrollUp,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleChart},
		{m.keys.ScrollDown, m.keys.ScrollUp},
	}
}
