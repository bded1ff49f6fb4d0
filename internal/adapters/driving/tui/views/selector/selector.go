// Package selector provides the report selection view: report type, period
// and department, in that order.
package selector

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// Step is the field currently being chosen.
type Step int

const (
	StepType Step = iota
	StepPeriod
	StepDepartment
)

// View is the report selector.
type View struct {
	styles      *styles.Styles
	types       *list.OptionList
	period      *input.PeriodInput
	departments *list.OptionList

	step       Step
	reportType domain.ReportType
	chosen     domain.Period

	width  int
	height int
	ready  bool
}

// NewView creates a new selector view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	types := list.NewOptionList(s, "Report type")
	opts := make([]list.Option, 0, len(domain.ReportTypes()))
	for _, t := range domain.ReportTypes() {
		opts = append(opts, list.Option{Label: string(t), Detail: t.TemplatePrefix()})
	}
	types.SetOptions(opts)

	departments := list.NewOptionList(s, "Department")
	deps := make([]list.Option, 0, len(domain.Departments()))
	for _, d := range domain.Departments() {
		deps = append(deps, list.Option{Label: d})
	}
	departments.SetOptions(deps)

	return &View{
		styles:      s,
		types:       types,
		period:      input.NewPeriodInput(s),
		departments: departments,
		width:       80,
		height:      24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Reset returns to the first step.
func (v *View) Reset() {
	v.step = StepType
	v.reportType = ""
	v.chosen = domain.Period{}
	v.period.Reset()
	v.period.Blur()
}

// Update handles messages for the selector view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	if v.step == StepPeriod {
		var cmd tea.Cmd
		v.period, cmd = v.period.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		return v.back()
	}

	switch v.step {
	case StepType:
		if msg.String() == "enter" {
			return v.chooseType()
		}
		v.types, _ = v.types.Update(msg)

	case StepPeriod:
		if msg.String() == "enter" {
			period, err := v.period.Period()
			if err != nil {
				return v, nil
			}
			v.chosen = period
			v.period.Blur()
			v.step = StepDepartment
			return v, nil
		}
		var cmd tea.Cmd
		v.period, cmd = v.period.Update(msg)
		return v, cmd

	case StepDepartment:
		if msg.String() == "enter" {
			return v, v.submit()
		}
		v.departments, _ = v.departments.Update(msg)
	}
	return v, nil
}

func (v *View) chooseType() (*View, tea.Cmd) {
	opt := v.types.SelectedOption()
	if opt == nil {
		return v, nil
	}
	v.reportType = domain.ReportType(opt.Label)
	if !v.reportType.HasPeriod() {
		v.chosen = domain.Period{}
		v.step = StepDepartment
		return v, nil
	}
	v.period.SetQuarterly(v.reportType.IsQuarterly())
	v.step = StepPeriod
	return v, v.period.Focus()
}

func (v *View) back() (*View, tea.Cmd) {
	switch v.step {
	case StepPeriod:
		v.period.Blur()
		v.step = StepType
	case StepDepartment:
		if v.reportType.HasPeriod() {
			v.step = StepPeriod
			return v, v.period.Focus()
		}
		v.step = StepType
	case StepType:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) submit() tea.Cmd {
	opt := v.departments.SelectedOption()
	if opt == nil {
		return nil
	}
	req := domain.ReportRequest{Type: v.reportType, Period: v.chosen, Department: opt.Label}
	if err := req.Validate(); err != nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	return func() tea.Msg { return messages.RequestSubmitted{Request: req} }
}

// View renders the current step with the choices made so far.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("New report"))
	b.WriteString("\n\n")

	if v.step > StepType {
		b.WriteString(v.styles.Muted.Render("Type: ") + v.styles.Normal.Render(string(v.reportType)) + "\n")
	}
	if v.step > StepPeriod && !v.chosen.IsZero() {
		b.WriteString(v.styles.Muted.Render("Period: ") + v.styles.Normal.Render(v.chosen.String()) + "\n")
	}
	if v.step > StepType {
		b.WriteString("\n")
	}

	switch v.step {
	case StepType:
		b.WriteString(v.types.View())
	case StepPeriod:
		b.WriteString(v.period.View())
	case StepDepartment:
		b.WriteString(v.departments.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[Enter] Next  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.types.SetDimensions(width, height-8)
	v.departments.SetDimensions(width, height-8)
}

// Step returns the current step.
func (v *View) Step() Step {
	return v.step
}
