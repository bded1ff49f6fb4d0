// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
)

// Item represents a single menu option. Exactly one of View, Msg or Quit applies.
type Item struct {
	Label string
	View  messages.ViewType
	Msg   tea.Msg // sent instead of switching views
	Quit  bool    // If true, selecting this item quits the app
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	notice   string
	failed   bool
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "New report", View: messages.ViewSelector},
			{Label: "Variations", View: messages.ViewVariations},
			{Label: "Build proposal", Msg: messages.ProposalRequested{}},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			item := v.items[v.selected]
			switch {
			case item.Quit:
				return v, tea.Quit
			case item.Msg != nil:
				return v, func() tea.Msg { return item.Msg }
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("reportgen"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Report generation from AI-written variations"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(item.Label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(item.Label))
		}
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		if v.failed {
			b.WriteString(v.styles.Error.Render(v.notice))
		} else {
			b.WriteString(v.styles.Success.Render(v.notice))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetNotice shows a one-line result under the menu, e.g. where the proposal was saved.
func (v *View) SetNotice(notice string, failed bool) {
	v.notice = notice
	v.failed = failed
}

// Notice returns the current notice.
func (v *View) Notice() string {
	return v.notice
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
