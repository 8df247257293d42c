package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the mint screen
type KeyMap struct {
	Mint         key.Binding
	Refresh      key.Binding
	SwitchWallet key.Binding
	Dismiss      key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Mint: key.NewBinding(
			key.WithKeys("m", "enter"),
			key.WithHelp("m", "mint"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		SwitchWallet: key.NewBinding(
			key.WithKeys("w", "tab"),
			key.WithHelp("w", "next wallet"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the help bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mint, k.Refresh, k.SwitchWallet, k.Dismiss, k.Quit}
}
