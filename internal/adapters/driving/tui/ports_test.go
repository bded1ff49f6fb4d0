package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

// MockContentService implements driving.ContentService for testing.
type MockContentService struct {
	FetchFunc  func(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error)
	CachedFunc func(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error)
}

func (m *MockContentService) Fetch(
	ctx context.Context, req domain.ReportRequest, _ func(*domain.RetrievalProgress),
) (*domain.DocumentContents, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, req)
	}
	return nil, domain.ErrFetchFailure
}

func (m *MockContentService) FetchOnce(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	return m.Fetch(ctx, req, nil)
}

func (m *MockContentService) Cached(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	if m.CachedFunc != nil {
		return m.CachedFunc(ctx, req)
	}
	return nil, domain.ErrNotFound
}

// MockGenerationService implements driving.GenerationService for testing.
type MockGenerationService struct {
	GenerateFunc func(ctx context.Context, doc *domain.DocumentContents) (*driving.GenerationResult, error)
}

func (m *MockGenerationService) Generate(
	ctx context.Context, doc *domain.DocumentContents, _ func(driving.Progress),
) (*driving.GenerationResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, doc)
	}
	return &driving.GenerationResult{Artifacts: domain.NewArtifactMap("gen")}, nil
}

func (m *MockGenerationService) Cancel() {}

func (m *MockGenerationService) Current() *domain.ArtifactMap { return nil }

func (m *MockGenerationService) Lookup(
	_ *domain.DocumentContents, _ int, _ domain.Selection,
) (*domain.Artifact, error) {
	return nil, domain.ErrNotFound
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct{}

func (m *MockDocumentService) RenderFull(
	_ context.Context, _ domain.ReportType, _ *domain.DocumentContents, _ domain.Selection, format domain.Format,
) ([]byte, error) {
	return []byte(format), nil
}

func (m *MockDocumentService) Open(_ string) error { return nil }

// MockProposalService implements driving.ProposalService for testing.
type MockProposalService struct {
	BuildFunc func(ctx context.Context) (*domain.Proposal, []byte, error)
}

func (m *MockProposalService) Build(ctx context.Context) (*domain.Proposal, []byte, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx)
	}
	return &domain.Proposal{Client: "Acme"}, []byte("pptx"), nil
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Settings *domain.AppSettings
	Err      error
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) { return m.Settings, m.Err }

func (m *MockSettingsService) Set(_, _ string) error { return nil }

func (m *MockSettingsService) Keys() []string { return nil }

func (m *MockSettingsService) IsSecret(_ string) bool { return false }

func (m *MockSettingsService) Validate() error { return nil }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.AppSettings{} }

func validPorts() *Ports {
	return &Ports{
		Content:    &MockContentService{},
		Generation: &MockGenerationService{},
		Document:   &MockDocumentService{},
	}
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"all required set", validPorts(), nil},
		{"missing content", &Ports{Generation: &MockGenerationService{}, Document: &MockDocumentService{}},
			ErrMissingContentService},
		{"missing generation", &Ports{Content: &MockContentService{}, Document: &MockDocumentService{}},
			ErrMissingGenerationService},
		{"missing document", &Ports{Content: &MockContentService{}, Generation: &MockGenerationService{}},
			ErrMissingDocumentService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPorts_OutputDir(t *testing.T) {
	p := validPorts()
	assert.Equal(t, ".", p.outputDir())

	p.Settings = &MockSettingsService{Settings: &domain.AppSettings{OutputDir: "/tmp/reports"}}
	assert.Equal(t, "/tmp/reports", p.outputDir())

	p.Settings = &MockSettingsService{Settings: &domain.AppSettings{}}
	assert.Equal(t, ".", p.outputDir())

	p.Settings = &MockSettingsService{Err: errors.New("unreadable")}
	assert.Equal(t, ".", p.outputDir())
}
