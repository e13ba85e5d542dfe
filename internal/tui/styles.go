package tui

import "github.com/charmbracelet/lipgloss"

// Color palette of the simulated terminal.
var (
	ColorPrimary = lipgloss.Color("#4ec9b0")
	ColorPrompt  = lipgloss.Color("#0dbc79")
	ColorPath    = lipgloss.Color("#2472c8")
	ColorSuccess = lipgloss.Color("#23d18b")
	ColorStep    = lipgloss.Color("#e5e510")
	ColorError   = lipgloss.Color("#f14c4c")
	ColorMuted   = lipgloss.Color("#858585")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	InstructionStyle = lipgloss.NewStyle().
				Foreground(ColorStep)

	HeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, true, false).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	PromptUserStyle = lipgloss.NewStyle().
			Foreground(ColorPrompt)

	PromptPathStyle = lipgloss.NewStyle().
			Foreground(ColorPath)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	StepStyle = lipgloss.NewStyle().
			Foreground(ColorStep)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	EditorTitleStyle = lipgloss.NewStyle().
				Reverse(true).
				Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Symbols for visual feedback.
const (
	SymbolCheck    = "✓"
	SymbolCross    = "✗"
	SymbolComplete = "🎉"
	SymbolBullet   = "•"
)
