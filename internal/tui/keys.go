package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the terminal and its nano editor.
type KeyMap struct {
	Submit     key.Binding
	HistoryUp  key.Binding
	HistoryDn  key.Binding
	Complete   key.Binding
	Hint       key.Binding
	Clear      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Quit       key.Binding
	EditorSave key.Binding
	EditorExit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		HistoryDn: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Hint: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("^G", "hint"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^L", "clear"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("^D", "quit"),
		),
		EditorSave: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^O", "write out"),
		),
		EditorExit: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("^X", "exit"),
		),
	}
}

// ShortHelp implements help.KeyMap for the shell prompt.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.HistoryUp, k.Complete, k.Hint, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.HistoryUp, k.HistoryDn, k.Complete},
		{k.Hint, k.Clear, k.PageUp, k.PageDown, k.Quit},
	}
}

// editorKeys adapts the map to the editor's help line.
type editorKeys KeyMap

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.EditorSave, k.EditorExit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
