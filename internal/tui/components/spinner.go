package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner is a loading indicator shown while a command is being validated.
type Spinner struct {
	spinner spinner.Model
	message string
	active  bool
	styles  spinnerStyles
}

type spinnerStyles struct {
	Message lipgloss.Style
}

// NewSpinner creates an inactive spinner.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec9b0"))

	return Spinner{
		spinner: s,
		styles:  spinnerStyles{Message: lipgloss.NewStyle().Foreground(lipgloss.Color("#858585"))},
	}
}

// Start activates the spinner with message and returns its first tick.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.active = true
	return s.spinner.Tick
}

// Stop hides the spinner. Pending ticks are dropped by Update.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is showing.
func (s Spinner) Active() bool {
	return s.active
}

// Update advances the animation while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return s, cmd
}

// View renders the spinner, or nothing when inactive.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return s.spinner.View() + " " + s.styles.Message.Render(s.message)
}
