// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// PeriodInput wraps a bubbles textinput for reporting periods.
type PeriodInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	quarterly bool
	err       error
}

// NewPeriodInput creates a new period input component.
func NewPeriodInput(s *styles.Styles) *PeriodInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20

	p := &PeriodInput{textinput: ti, styles: s}
	p.SetQuarterly(false)
	return p
}

// Init initialises the input.
func (p *PeriodInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *PeriodInput) Update(msg tea.Msg) (*PeriodInput, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	p.err = nil
	return p, cmd
}

// View renders the input and the last parse error.
func (p *PeriodInput) View() string {
	label := p.styles.Title.Render("Period: ")
	field := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	view := lipgloss.JoinHorizontal(lipgloss.Center, label, field)
	if p.err != nil {
		view += "\n" + p.styles.Error.Render(p.err.Error())
	}
	return view
}

// SetQuarterly switches the placeholder between months and quarters.
func (p *PeriodInput) SetQuarterly(quarterly bool) {
	p.quarterly = quarterly
	if quarterly {
		p.textinput.Placeholder = "Q2/2024"
	} else {
		p.textinput.Placeholder = "2024 / 06"
	}
}

// Period parses the current value. A parse failure is kept for display.
func (p *PeriodInput) Period() (domain.Period, error) {
	period, err := domain.ParsePeriod(p.textinput.Value())
	if err == nil && period.IsZero() {
		err = domain.ErrInvalidInput
	}
	if err == nil && p.quarterly != (period.Quarter > 0) {
		err = domain.ErrInvalidInput
	}
	p.err = err
	return period, err
}

// Err returns the last parse error.
func (p *PeriodInput) Err() error {
	return p.err
}

// Value returns the current input value.
func (p *PeriodInput) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *PeriodInput) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *PeriodInput) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *PeriodInput) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *PeriodInput) Focused() bool {
	return p.textinput.Focused()
}

// Reset clears the input and any error.
func (p *PeriodInput) Reset() {
	p.textinput.Reset()
	p.err = nil
}
