// Package variations provides the main working view: page navigation, the
// variation choice per tag, generation progress and downloads.
package variations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

// View is the variations view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	spinner   spinner.Model
	bar       progress.Model

	content    driving.ContentService
	generation driving.GenerationService
	document   driving.DocumentService
	outputDir  string
	ctx        context.Context

	request domain.ReportRequest
	doc     *domain.DocumentContents
	sel     domain.Selection
	page    int // index into doc.Pages
	tag     int // index into the page's tags

	// seq identifies the newest background operation; older messages are dropped.
	seq    int
	cancel context.CancelFunc
	events *stream

	loading    bool
	retrieval  float64
	generating bool
	counts     driving.Progress
	failures   map[string]error

	width  int
	height int
	ready  bool
}

// NewView creates a new variations view. outputDir receives downloads.
func NewView(
	s *styles.Styles,
	content driving.ContentService,
	generation driving.GenerationService,
	document driving.DocumentService,
	outputDir string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if outputDir == "" {
		outputDir = "."
	}
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:     s,
		keymap:     km,
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		content:    content,
		generation: generation,
		document:   document,
		outputDir:  outputDir,
		ctx:        context.Background(),
		failures:   make(map[string]error),
		width:      80,
		height:     24,
	}
	v.statusbar.SetHints(km.VariationsHelp())
	return v
}

// WithContext sets the context background operations derive from.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load shows cached contents for the request, retrieving them when absent.
func (v *View) Load(req domain.ReportRequest) tea.Cmd {
	v.request = req
	v.doc = nil
	v.sel = nil
	if v.content != nil {
		if doc, err := v.content.Cached(v.ctx, req); err == nil {
			seq := v.begin()
			return func() tea.Msg {
				return messages.ContentsLoaded{Seq: seq, Request: req, Contents: doc}
			}
		}
	}
	return v.fetch()
}

// Refresh retrieves the current request again.
func (v *View) Refresh() tea.Cmd {
	if v.request.Type == "" {
		return nil
	}
	return v.fetch()
}

// begin supersedes the running operation and returns the new sequence number.
func (v *View) begin() int {
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	v.events = newStream(ctx)
	v.generating = false
	v.loading = false
	return v.seq
}

func (v *View) fetch() tea.Cmd {
	if v.content == nil {
		return errCmd(errors.New("content service not available"))
	}
	seq := v.begin()
	events := v.events
	req := v.request
	v.loading = true
	v.retrieval = 0
	v.statusbar.SetState(status.StateFetching)

	go func() {
		doc, err := v.content.Fetch(events.ctx, req, func(p *domain.RetrievalProgress) {
			events.offer(messages.RetrievalProgressed{Seq: seq, State: p.State(), Overall: p.Overall()})
		})
		events.finish(messages.ContentsLoaded{Seq: seq, Request: req, Contents: doc, Err: err})
	}()

	return tea.Batch(v.spinner.Tick, events.next())
}

// Generate starts a new generation cycle for the loaded contents.
func (v *View) Generate() tea.Cmd {
	if v.doc == nil || v.generation == nil {
		return nil
	}
	seq := v.begin()
	events := v.events
	doc := v.doc
	v.generating = true
	v.counts = driving.Progress{Total: domain.CountCombinations(doc)}
	v.failures = make(map[string]error)
	v.statusbar.SetState(status.StateGenerating)

	go func() {
		result, err := v.generation.Generate(events.ctx, doc, func(p driving.Progress) {
			events.offer(messages.GenerationProgressed{Seq: seq, Progress: p})
		})
		events.finish(messages.GenerationCompleted{Seq: seq, Result: result, Err: err})
	}()

	return tea.Batch(v.spinner.Tick, events.next())
}

// Update handles messages for the variations view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if !v.loading && !v.generating {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.RetrievalProgressed:
		if msg.Seq != v.seq {
			return v, nil
		}
		if msg.Overall > v.retrieval {
			v.retrieval = msg.Overall
		}
		v.statusbar.SetMessage(fmt.Sprintf("Retrieving contents... %.0f%%", v.retrieval))
		return v, v.events.next()

	case messages.ContentsLoaded:
		return v.handleContentsLoaded(msg)

	case messages.GenerationProgressed:
		if msg.Seq != v.seq {
			return v, nil
		}
		if msg.Progress.Completed >= v.counts.Completed {
			v.counts = msg.Progress
		}
		v.statusbar.SetMessage(fmt.Sprintf("Generating %d/%d", v.counts.Completed, v.counts.Total))
		return v, v.events.next()

	case messages.GenerationCompleted:
		return v.handleGenerationCompleted(msg)

	case messages.DownloadCompleted:
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.statusbar.SetState(status.StateDone)
		v.statusbar.SetMessage("Saved " + msg.Path)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleContentsLoaded(msg messages.ContentsLoaded) (*View, tea.Cmd) {
	if msg.Seq != v.seq {
		return v, nil
	}
	v.loading = false
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}
	v.request = msg.Request
	v.doc = msg.Contents
	v.sel = domain.DefaultSelection(msg.Contents)
	v.page = 0
	v.tag = 0
	v.statusbar.SetState(status.StateReady)
	return v, v.Generate()
}

func (v *View) handleGenerationCompleted(msg messages.GenerationCompleted) (*View, tea.Cmd) {
	if msg.Seq != v.seq {
		return v, nil
	}
	v.generating = false
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrGenerationSuperseded) || errors.Is(msg.Err, context.Canceled) {
			v.statusbar.SetState(status.StateReady)
			return v, nil
		}
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	res := msg.Result
	v.counts = driving.Progress{
		GenerationID: res.Generation.ID,
		Completed:    v.counts.Total,
		Failed:       len(res.Failures),
		Total:        v.counts.Total,
	}
	for _, f := range res.Failures {
		v.failures[f.Key] = f.Err
	}
	if len(res.Failures) > 0 {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(fmt.Sprintf("%d of %d combinations failed; press g to retry",
			len(res.Failures), v.counts.Total))
		return v, nil
	}
	v.statusbar.SetState(status.StateDone)
	v.statusbar.SetMessage(fmt.Sprintf("%d combinations rendered", res.Artifacts.Len()))
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	if keymap.Matches(k, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if keymap.Matches(k, v.keymap.Refresh) {
		return v, v.Refresh()
	}
	if v.doc == nil {
		return v, nil
	}

	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.tag > 0 {
			v.tag--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.tag < len(v.currentPage().Tags)-1 {
			v.tag++
		}
	case keymap.Matches(k, v.keymap.PrevPage):
		v.movePage(-1)
	case keymap.Matches(k, v.keymap.NextPage):
		v.movePage(1)
	case keymap.Matches(k, v.keymap.PrevVariation):
		v.cycle(-1)
	case keymap.Matches(k, v.keymap.NextVariation):
		v.cycle(1)
	case keymap.Matches(k, v.keymap.Generate):
		return v, v.Generate()
	case keymap.Matches(k, v.keymap.Open):
		return v, v.openPage()
	case keymap.Matches(k, v.keymap.DownloadDOCX):
		return v, v.download(domain.FormatDOCX)
	case keymap.Matches(k, v.keymap.DownloadPDF):
		return v, v.download(domain.FormatPDF)
	}
	return v, nil
}

func (v *View) movePage(step int) {
	next := v.page + step
	if next < 0 || next >= len(v.doc.Pages) {
		return
	}
	v.page = next
	v.tag = 0
}

func (v *View) cycle(step int) {
	page := v.currentPage()
	if page == nil || len(page.Tags) == 0 {
		return
	}
	if _, err := v.sel.Cycle(v.doc, page.Tags[v.tag].ID, step); err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
	}
}

func (v *View) currentPage() *domain.Page {
	if v.doc == nil || v.page >= len(v.doc.Pages) {
		return nil
	}
	return &v.doc.Pages[v.page]
}

// download renders the full document with the current selection.
func (v *View) download(format domain.Format) tea.Cmd {
	if v.document == nil {
		return errCmd(errors.New("document service not available"))
	}
	ctx := v.ctx
	req := v.request
	doc := v.doc
	sel := v.sel.Clone()
	dir := v.outputDir
	v.statusbar.SetState(status.StateGenerating)
	v.statusbar.SetMessage("Rendering full " + strings.ToUpper(string(format)) + "...")

	return func() tea.Msg {
		data, err := v.document.RenderFull(ctx, req.Type, doc, sel, format)
		if err != nil {
			return messages.DownloadCompleted{Err: err}
		}
		path, err := writeFile(dir, req.Type.TemplatePrefix()+format.Extension(), data)
		return messages.DownloadCompleted{Path: path, Err: err}
	}
}

// openPage writes the current page's artifact and opens it, preferring PDF.
func (v *View) openPage() tea.Cmd {
	page := v.currentPage()
	if page == nil || v.generation == nil {
		return nil
	}
	artifact, err := v.generation.Lookup(v.doc, page.PageNumber, v.sel)
	if err != nil {
		return errCmd(err)
	}
	format := domain.FormatPDF
	data, err := artifact.Bytes(format)
	if err != nil {
		format = domain.FormatDOCX
		data = artifact.DOCX
	}
	dir := v.outputDir

	return func() tea.Msg {
		path, err := writeFile(dir, artifact.Key+format.Extension(), data)
		if err != nil {
			return messages.DownloadCompleted{Err: err}
		}
		if v.document != nil {
			if err := v.document.Open(path); err != nil {
				return messages.DownloadCompleted{Path: path, Err: err}
			}
		}
		return messages.DownloadCompleted{Path: path}
	}
}

func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.DownloadCompleted{Err: err}
	}
}

// View renders the variations view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.renderHeader())

	switch {
	case v.loading:
		sections = append(sections,
			v.spinner.View()+" "+v.styles.Normal.Render("Retrieving contents"),
			v.bar.ViewAs(v.retrieval/100))
	case v.doc == nil:
		sections = append(sections, v.styles.Muted.Render("No report loaded. Choose New report from the menu."))
	default:
		sections = append(sections, v.renderTabs(), v.renderTags(), v.renderArtifact())
		if v.generating || v.counts.Total > 0 {
			sections = append(sections, v.renderGeneration())
		}
	}

	v.statusbar.SetWidth(v.width)
	sections = append(sections, v.statusbar.View())
	return strings.Join(sections, "\n\n")
}

func (v *View) renderHeader() string {
	if v.request.Type == "" {
		return v.styles.Title.Render("Variations")
	}
	parts := []string{string(v.request.Type)}
	if !v.request.Period.IsZero() {
		parts = append(parts, v.request.Period.String())
	}
	parts = append(parts, v.request.Department)
	return v.styles.Title.Render(strings.Join(parts, " · "))
}

func (v *View) renderTabs() string {
	tabs := make([]string, 0, len(v.doc.Pages))
	for i, p := range v.doc.Pages {
		label := fmt.Sprintf("Page %d", p.PageNumber)
		if i == v.page {
			tabs = append(tabs, v.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, v.styles.Tab.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (v *View) renderTags() string {
	page := v.currentPage()
	if page == nil || len(page.Tags) == 0 {
		return v.styles.Muted.Render("This page has no tags")
	}

	lines := make([]string, 0, len(page.Tags)+1)
	for i := range page.Tags {
		tag := &page.Tags[i]
		chosen := v.sel[tag.ID]
		position := 1
		for j, variation := range tag.Variations {
			if variation.ID == chosen {
				position = j + 1
			}
		}
		label := tag.ID
		if tag.Title != "" {
			label = tag.Title
		}
		counter := fmt.Sprintf("%d/%d", position, len(tag.Variations))
		kind := v.styles.Muted.Render("(" + tag.Kind.Description() + ")")

		if i != v.tag {
			lines = append(lines, "  "+v.styles.Normal.Render(label)+" "+kind+" "+v.styles.Muted.Render(counter))
			continue
		}
		lines = append(lines, "> "+v.styles.Subtitle.Render(label)+" "+kind+" "+v.styles.Key.Render(counter))
		if variation, err := tag.Variation(chosen); err == nil {
			lines = append(lines, v.styles.Panel.Width(v.panelWidth()).Render(renderText(tag.Kind, variation.Text)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderText(kind domain.TagKind, text domain.VariationText) string {
	if kind != domain.TagKindBulletList {
		return text.String()
	}
	items := text.Lines()
	for i, item := range items {
		items[i] = "• " + item
	}
	return strings.Join(items, "\n")
}

func (v *View) renderArtifact() string {
	page := v.currentPage()
	if page == nil {
		return ""
	}
	key, err := domain.CombinationKey(page.PageNumber, v.sel.ForPage(page), v.doc)
	if err != nil {
		return v.styles.Error.Render(err.Error())
	}
	line := v.styles.Muted.Render("Key: ") + v.styles.Key.Render(key) + "  "

	if failure, ok := v.failures[key]; ok {
		return line + v.styles.Error.Render("failed: "+failure.Error())
	}
	if v.generation == nil {
		return line
	}
	artifact, err := v.generation.Lookup(v.doc, page.PageNumber, v.sel)
	switch {
	case err == nil && len(artifact.PDF) > 0:
		return line + v.styles.Success.Render("PDF ready")
	case err == nil:
		return line + v.styles.Success.Render("DOCX ready")
	case v.generating:
		return line + v.styles.Muted.Render("rendering...")
	default:
		return line + v.styles.Warning.Render("not rendered; press g")
	}
}

func (v *View) renderGeneration() string {
	line := fmt.Sprintf("%d/%d rendered", v.counts.Completed, v.counts.Total)
	if v.counts.Failed > 0 {
		line += fmt.Sprintf(", %d failed", v.counts.Failed)
	}
	bar := v.bar.ViewAs(v.counts.Fraction())
	if v.generating {
		return v.spinner.View() + " " + bar + " " + v.styles.Muted.Render(line)
	}
	return bar + " " + v.styles.Muted.Render(line)
}

func (v *View) panelWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	barWidth := width - 30
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	v.bar.Width = barWidth
	v.statusbar.SetWidth(width)
}

// Help returns the bindings this view responds to.
func (v *View) Help() []key.Binding {
	return v.keymap.VariationsHelp()
}

// Contents returns the loaded contents.
func (v *View) Contents() *domain.DocumentContents {
	return v.doc
}

// Selection returns the current selection.
func (v *View) Selection() domain.Selection {
	return v.sel
}

// Request returns the current request.
func (v *View) Request() domain.ReportRequest {
	return v.request
}

// PageIndex returns the index of the shown page.
func (v *View) PageIndex() int {
	return v.page
}

// TagIndex returns the index of the focused tag.
func (v *View) TagIndex() int {
	return v.tag
}

// Loading reports whether contents are being retrieved.
func (v *View) Loading() bool {
	return v.loading
}

// Generating reports whether a generation cycle is running.
func (v *View) Generating() bool {
	return v.generating
}

// Counts returns the latest generation counts.
func (v *View) Counts() driving.Progress {
	return v.counts
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Stop cancels the running background operation.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
}
