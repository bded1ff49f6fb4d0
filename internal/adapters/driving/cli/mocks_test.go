package cli

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

type mockContentService struct {
	cached  *domain.DocumentContents
	fetched *domain.DocumentContents
	err     error
	fetches int
	once    int
}

func (m *mockContentService) Fetch(
	_ context.Context, _ domain.ReportRequest, onProgress func(*domain.RetrievalProgress),
) (*domain.DocumentContents, error) {
	m.fetches++
	if onProgress != nil {
		onProgress(domain.NewRetrievalProgress())
	}
	return m.fetched, m.err
}

func (m *mockContentService) FetchOnce(_ context.Context, _ domain.ReportRequest) (*domain.DocumentContents, error) {
	m.once++
	return m.fetched, m.err
}

func (m *mockContentService) Cached(_ context.Context, _ domain.ReportRequest) (*domain.DocumentContents, error) {
	if m.cached == nil {
		return nil, domain.ErrNotFound
	}
	return m.cached, nil
}

type mockGenerationService struct {
	result *driving.GenerationResult
	err    error
}

func (m *mockGenerationService) Generate(
	_ context.Context, _ *domain.DocumentContents, onProgress func(driving.Progress),
) (*driving.GenerationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if onProgress != nil {
		onProgress(driving.Progress{Completed: m.result.Generation.Total, Total: m.result.Generation.Total})
	}
	return m.result, nil
}

func (m *mockGenerationService) Cancel() {}

func (m *mockGenerationService) Current() *domain.ArtifactMap { return nil }

func (m *mockGenerationService) Lookup(
	_ *domain.DocumentContents, _ int, _ domain.Selection,
) (*domain.Artifact, error) {
	return nil, domain.ErrNotFound
}

type mockDocumentService struct {
	sel    domain.Selection
	format domain.Format
	opened string
	err    error
}

func (m *mockDocumentService) RenderFull(
	_ context.Context, _ domain.ReportType, _ *domain.DocumentContents, sel domain.Selection, format domain.Format,
) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sel = sel
	m.format = format
	return []byte("full report"), nil
}

func (m *mockDocumentService) Open(path string) error {
	m.opened = path
	return nil
}

type mockProposalService struct {
	proposal *domain.Proposal
	err      error
}

func (m *mockProposalService) Build(_ context.Context) (*domain.Proposal, []byte, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.proposal, []byte("deck"), nil
}

// mockSettingsService stores flat key/value pairs over the default settings.
type mockSettingsService struct {
	settings domain.AppSettings
	values   map[string]string
	setErr   error
}

func newMockSettings(outputDir string) *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.OutputDir = outputDir
	return &mockSettingsService{settings: s, values: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) { return &m.settings, nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := []string{"output.dir", "conversion.secret", "generation.concurrency"}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) IsSecret(key string) bool { return key == "conversion.secret" }

func (m *mockSettingsService) Validate() error { return m.settings.Validate() }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func testDoc() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{
		{PageNumber: 1, Tags: []domain.Tag{
			{ID: "summary", Title: "Summary", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Sales grew")},
				{ID: 1, Text: domain.NewTextVariation("Record month")},
			}},
			{ID: "points_bullet", Kind: domain.TagKindBulletList, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewListVariation("TVs", "Phones")},
			}},
		}},
		{PageNumber: 2, Tags: []domain.Tag{
			{ID: "outlook", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Stable")},
				{ID: 1, Text: domain.NewTextVariation("Growing")},
			}},
		}},
	}}
}

func monthlyFlags() *requestFlags {
	return &requestFlags{
		reportType: "monthly",
		period:     "2024 / 06",
		department: domain.DefaultDepartment,
	}
}

// testCommand returns a command with captured output, standing in for the
// command cobra would pass to RunE.
func testCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

// withServices installs services for one test and restores an empty set after.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })
}
