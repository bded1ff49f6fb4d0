// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up moves to the previous tag or option.
	Up key.Binding

	// Down moves to the next tag or option.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// PrevPage and NextPage move between report pages.
	PrevPage key.Binding
	NextPage key.Binding

	// PrevVariation and NextVariation cycle the variation of the current tag.
	PrevVariation key.Binding
	NextVariation key.Binding

	// Generate starts a new generation cycle.
	Generate key.Binding

	// Refresh retrieves the contents again.
	Refresh key.Binding

	// Open writes the current page's artifact and opens it.
	Open key.Binding

	// DownloadDOCX and DownloadPDF render the full document.
	DownloadDOCX key.Binding
	DownloadPDF  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
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
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "["),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "]"),
			key.WithHelp("]", "next page"),
		),
		PrevVariation: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←/h", "prev variation"),
		),
		NextVariation: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "next variation"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open page"),
		),
		DownloadDOCX: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download docx"),
		),
		DownloadPDF: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "download pdf"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// VariationsHelp returns keybindings for the variations view.
func (k *KeyMap) VariationsHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.NextVariation, k.Generate, k.DownloadPDF, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.PrevPage, k.NextPage, k.PrevVariation, k.NextVariation},
		{k.Generate, k.Refresh, k.Open, k.DownloadDOCX, k.DownloadPDF},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
