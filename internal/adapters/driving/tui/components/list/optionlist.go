// Package list provides list display components for the TUI.
package list

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
)

// Option is one entry of an OptionList.
type Option struct {
	Label string

	// Detail is shown muted after the label.
	Detail string
}

// OptionList displays a titled, navigable list of options.
type OptionList struct {
	title    string
	options  []Option
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewOptionList creates a new option list component.
func NewOptionList(s *styles.Styles, title string) *OptionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &OptionList{
		title:  title,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the option list.
func (r *OptionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *OptionList) Update(msg tea.Msg) (*OptionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.options) > 0 {
				r.selected = len(r.options) - 1
			}
		}
	}
	return r, nil
}

// View renders the option list.
func (r *OptionList) View() string {
	lines := make([]string, 0, len(r.options)+2)
	if r.title != "" {
		lines = append(lines, r.styles.Subtitle.Render(r.title), "")
	}
	if len(r.options) == 0 {
		lines = append(lines, r.styles.Muted.Render("No options"))
		return strings.Join(lines, "\n")
	}

	visible := r.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.options) {
		end = len(r.options)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderOption(i))
	}
	return strings.Join(lines, "\n")
}

func (r *OptionList) renderOption(index int) string {
	opt := r.options[index]
	if index == r.selected {
		line := r.styles.Selected.Render("> " + opt.Label)
		if opt.Detail != "" {
			line += "  " + r.styles.Muted.Render(opt.Detail)
		}
		return line
	}
	line := r.styles.Normal.Render("  " + opt.Label)
	if opt.Detail != "" {
		line += "  " + r.styles.Muted.Render(opt.Detail)
	}
	return line
}

// SetOptions replaces the options and resets the selection.
func (r *OptionList) SetOptions(options []Option) {
	r.options = options
	r.selected = 0
}

// Options returns the current options.
func (r *OptionList) Options() []Option {
	return r.options
}

// Selected returns the index of the selected option.
func (r *OptionList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *OptionList) SetSelected(index int) {
	if index >= 0 && index < len(r.options) {
		r.selected = index
	}
}

// SelectedOption returns the currently selected option, or nil if none.
func (r *OptionList) SelectedOption() *Option {
	if len(r.options) == 0 {
		return nil
	}
	return &r.options[r.selected]
}

// MoveUp moves selection up.
func (r *OptionList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *OptionList) MoveDown() {
	if r.selected < len(r.options)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *OptionList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of options.
func (r *OptionList) Count() int {
	return len(r.options)
}
