package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/burnrate-tui/internal/ui/styles"
)

// LoadingSpinner is a spinner with a label and a progress detail shown
// while usage logs are scanned.
type LoadingSpinner struct {
	spinner     spinner.Model
	label       string
	detail      string
	labelStyle  lipgloss.Style
	detailStyle lipgloss.Style
}

// NewSpinner creates a new loading spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner:     s,
		label:       label,
		labelStyle:  lipgloss.NewStyle().Foreground(styles.TextSecondary),
		detailStyle: lipgloss.NewStyle().Foreground(styles.TextMuted),
	}
}

// Init starts the spinner.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update handles spinner tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// SetDetail sets the progress text rendered after the label. An empty
// detail hides it.
func (l *LoadingSpinner) SetDetail(detail string) {
	l.detail = detail
}

// ViewWithLabel renders the spinner, its label and the current detail.
func (l LoadingSpinner) ViewWithLabel() string {
	out := l.spinner.View() + " " + l.labelStyle.Render(l.label)
	if l.detail != "" {
		out += " " + l.detailStyle.Render(l.detail)
	}
	return out
}
