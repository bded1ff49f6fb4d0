// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
)

// State represents the current activity for display.
type State string

const (
	StateReady      State = "ready"
	StateFetching   State = "fetching"
	StateGenerating State = "generating"
	StateDone       State = "done"
	StateError      State = "error"
)

// Bar displays the current activity and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	hints   []key.Binding
	state   State
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		hints:  km.ShortHelp(),
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateFetching:
		return s.styles.Muted.Render(s.messageOr("Retrieving contents..."))
	case StateGenerating:
		return s.styles.Muted.Render(s.messageOr("Generating..."))
	case StateDone:
		return s.styles.Success.Render(s.messageOr("Done"))
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateReady:
	}
	return s.styles.Muted.Render(s.messageOr("Ready"))
}

func (s *Bar) messageOr(fallback string) string {
	if s.message != "" {
		return s.message
	}
	return fallback
}

func (s *Bar) renderRight() string {
	hints := make([]string, 0, len(s.hints))
	for _, b := range s.hints {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the state and clears the message.
func (s *Bar) SetState(state State) {
	s.state = state
	s.message = ""
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the text shown for the current state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetHints replaces the keybinding hints. Nil restores the short help.
func (s *Bar) SetHints(bindings []key.Binding) {
	if bindings == nil {
		bindings = s.keymap.ShortHelp()
	}
	s.hints = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.hints = s.keymap.ShortHelp()
}
