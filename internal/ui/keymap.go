package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines keyboard shortcuts for the application. Letter keys carry a
// ctrl modifier because the swap form keeps a text input focused at all
// times.
type KeyMap struct {
	// Form navigation
	NextField key.Binding
	PrevField key.Binding
	Refresh   key.Binding

	// Actions
	SwapDirection key.Binding
	CycleWallet   key.Binding
	EditBasis     key.Binding
	DeleteBasis   key.Binding
	SearchToken   key.Binding
	ToggleLogs    key.Binding

	// List navigation (token picker)
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Global
	Back key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "quote now"),
		),
		SwapDirection: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "flip pair"),
		),
		CycleWallet: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "next wallet"),
		),
		EditBasis: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "cost basis"),
		),
		DeleteBasis: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete record"),
		),
		SearchToken: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "find token"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logs"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the key bindings for the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Refresh, k.EditBasis, k.Quit}
}

// FullHelp returns all key bindings grouped for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Refresh},
		{k.SwapDirection, k.CycleWallet, k.EditBasis},
		{k.SearchToken, k.ToggleLogs, k.Quit},
	}
}

// ContextualHelp returns the bindings relevant to the given mode.
func (k KeyMap) ContextualHelp(mode Mode) []key.Binding {
	switch mode {
	case ModePicker:
		return []key.Binding{k.Up, k.Down, k.Select, k.Back}
	case ModeBasis:
		return []key.Binding{k.NextField, k.Select, k.DeleteBasis, k.Back}
	default:
		return []key.Binding{
			k.NextField, k.Refresh, k.SwapDirection, k.CycleWallet,
			k.EditBasis, k.SearchToken, k.ToggleLogs, k.Quit,
		}
	}
}
