package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/views/selector"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/views/variations"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles

	menuView       *menu.View
	selectorView   *selector.View
	variationsView *variations.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	outputDir string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		ports = &Ports{}
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	outputDir := ports.outputDir()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		menuView:       menu.NewView(s),
		selectorView:   selector.NewView(s),
		variationsView: variations.NewView(s, ports.Content, ports.Generation, ports.Document, outputDir),
		currentView:    messages.ViewMenu,
		outputDir:      outputDir,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.variationsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("reportgen")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewSelector {
			a.selectorView.Reset()
			return a, a.selectorView.Init()
		}
		return a, nil

	case messages.RequestSubmitted:
		a.err = nil
		a.currentView = messages.ViewVariations
		return a, a.variationsView.Load(msg.Request)

	case messages.ProposalRequested:
		if a.ports.Proposal == nil {
			a.menuView.SetNotice(ErrNoProposalService.Error(), true)
			return a, nil
		}
		a.menuView.SetNotice("Building proposal...", false)
		return a, a.buildProposal()

	case messages.ProposalCompleted:
		if msg.Err != nil {
			a.menuView.SetNotice("Proposal failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.menuView.SetNotice(fmt.Sprintf("Proposal for %s saved to %s", msg.Proposal.Client, msg.Path), false)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		a.variationsView.Stop()
		return a, tea.Quit

	// Background work keeps running while other views are shown.
	case spinner.TickMsg, messages.RetrievalProgressed, messages.ContentsLoaded,
		messages.GenerationProgressed, messages.GenerationCompleted, messages.DownloadCompleted:
		a.variationsView, cmd = a.variationsView.Update(msg)
		return a, cmd
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSelector:
		a.selectorView, cmd = a.selectorView.Update(msg)
	case messages.ViewVariations:
		a.variationsView, cmd = a.variationsView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.String() == "ctrl+c" {
		a.variationsView.Stop()
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSelector:
		a.err = nil
		a.selectorView, cmd = a.selectorView.Update(msg)
	case messages.ViewVariations:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.variationsView, cmd = a.variationsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "?" {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// buildProposal runs the proposal pipeline and writes the deck.
func (a *App) buildProposal() tea.Cmd {
	ctx := a.ctx
	dir := a.outputDir
	proposal := a.ports.Proposal

	return func() tea.Msg {
		result, data, err := proposal.Build(ctx)
		if err != nil {
			return messages.ProposalCompleted{Err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return messages.ProposalCompleted{Err: err}
		}
		path := filepath.Join(dir, "proposal"+domain.FormatPPTX.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return messages.ProposalCompleted{Err: err}
		}
		return messages.ProposalCompleted{Path: path, Proposal: result}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var view string
	switch a.currentView {
	case messages.ViewSelector:
		view = a.selectorView.View()
	case messages.ViewVariations:
		view = a.variationsView.View()
	case messages.ViewHelp:
		view = a.viewHelp()
	default:
		view = a.menuView.View()
	}

	if a.err != nil {
		view += "\n\n" + a.styles.Error.Render("Error: "+a.err.Error())
	}
	return view
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ?           Toggle help
  ctrl+c      Quit

Menu and selector:
  j/k, ↑/↓    Navigate options
  enter       Select / next step

Variations:
  [ / ]       Previous / next page
  j/k, ↑/↓    Previous / next tag
  h/l, ←/→    Previous / next variation (tab also cycles)
  g           Generate every combination again
  r           Retrieve contents again
  o           Save and open the current page
  d / p       Download the full report as DOCX / PDF

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.variationsView.Stop()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Variations returns the variations view.
func (a *App) Variations() *variations.View {
	return a.variationsView
}

// OutputDir returns where downloads are written.
func (a *App) OutputDir() string {
	return a.outputDir
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.selectorView.SetDimensions(width, height)
	a.variationsView.SetDimensions(width, height)
}
