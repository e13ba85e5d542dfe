package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Option represents a selectable option in the selector.
type Option struct {
	Label       string
	Description string
	Value       string
}

// Selector picks one option from a list. It is embedded in a parent model:
// Update never quits the program, the parent checks Submitted and Cancelled.
type Selector struct {
	title     string
	options   []Option
	cursor    int
	offset    int
	height    int
	keyMap    selectorKeyMap
	styles    selectorStyles
	submitted bool
	cancelled bool
}

type selectorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

type selectorStyles struct {
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Description lipgloss.Style
	Help        lipgloss.Style
}

func defaultSelectorStyles() selectorStyles {
	return selectorStyles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ec9b0")).MarginBottom(1),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec9b0")).Bold(true),
		Unselected:  lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d4")),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("#858585")).MarginLeft(4),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("#858585")).MarginTop(1),
	}
}

func defaultSelectorKeyMap() selectorKeyMap {
	return selectorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// NewSelector creates a new selector component.
func NewSelector(title string, options []Option) Selector {
	return Selector{
		title:   title,
		options: options,
		keyMap:  defaultSelectorKeyMap(),
		styles:  defaultSelectorStyles(),
	}
}

// SetHeight fits the option list into the given number of screen lines.
func (s *Selector) SetHeight(lines int) {
	// Each option takes two lines; title and help take four.
	s.height = max((lines-4)/2, 1)
	s.scroll()
}

// Update handles navigation keys.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || s.submitted || s.cancelled {
		return s, nil
	}
	switch {
	case key.Matches(keyMsg, s.keyMap.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(keyMsg, s.keyMap.Down):
		if s.cursor < len(s.options)-1 {
			s.cursor++
		}
	case key.Matches(keyMsg, s.keyMap.Select):
		if len(s.options) > 0 {
			s.submitted = true
		}
	case key.Matches(keyMsg, s.keyMap.Quit):
		s.cancelled = true
	}
	s.scroll()
	return s, nil
}

func (s *Selector) scroll() {
	if s.height <= 0 {
		return
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+s.height {
		s.offset = s.cursor - s.height + 1
	}
}

// View renders the visible window of options.
func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Title.Render(s.title))
	b.WriteString("\n")

	end := len(s.options)
	if s.height > 0 {
		end = min(s.offset+s.height, end)
	}
	for i := s.offset; i < end; i++ {
		opt := s.options[i]
		style, symbol := s.styles.Unselected, "○"
		if i == s.cursor {
			style, symbol = s.styles.Selected, "●"
		}

		b.WriteString(style.Render(symbol + " " + opt.Label))
		b.WriteString("\n")
		if opt.Description != "" {
			b.WriteString(s.styles.Description.Render(opt.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString(s.styles.Help.Render("↑/↓ navigate • enter select • q quit"))
	return b.String()
}

// Cancelled returns true if the user cancelled the selection.
func (s Selector) Cancelled() bool {
	return s.cancelled
}

// Submitted returns true if the user made a selection.
func (s Selector) Submitted() bool {
	return s.submitted
}

// Value returns the value of the option under the cursor once submitted.
func (s Selector) Value() string {
	if !s.submitted || s.cursor >= len(s.options) {
		return ""
	}
	return s.options[s.cursor].Value
}
