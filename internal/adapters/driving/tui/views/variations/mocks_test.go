package variations

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

type mockContent struct {
	cached  *domain.DocumentContents
	fetched *domain.DocumentContents
	err     error
}

func (m *mockContent) Fetch(
	_ context.Context,
	_ domain.ReportRequest,
	_ func(*domain.RetrievalProgress),
) (*domain.DocumentContents, error) {
	return m.fetched, m.err
}

func (m *mockContent) FetchOnce(_ context.Context, _ domain.ReportRequest) (*domain.DocumentContents, error) {
	return m.fetched, m.err
}

func (m *mockContent) Cached(_ context.Context, _ domain.ReportRequest) (*domain.DocumentContents, error) {
	if m.cached == nil {
		return nil, domain.ErrNotFound
	}
	return m.cached, nil
}

// mockGeneration renders every combination synchronously. Keys listed in
// fail are reported as failures.
type mockGeneration struct {
	mu      sync.Mutex
	fail    map[string]bool
	err     error
	current *domain.ArtifactMap
	cycles  int
}

func (m *mockGeneration) Generate(
	_ context.Context,
	doc *domain.DocumentContents,
	onProgress func(driving.Progress),
) (*driving.GenerationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.cycles++
	artifacts := domain.NewArtifactMap("gen-1")
	m.mu.Unlock()

	result := &driving.GenerationResult{Generation: domain.Generation{ID: "gen-1"}, Artifacts: artifacts}
	total := domain.CountCombinations(doc)
	done := 0
	for _, pageNumber := range doc.PageNumbers() {
		for _, combo := range domain.EnumerateCombinations(doc)[pageNumber] {
			key, _ := domain.CombinationKey(pageNumber, combo, doc)
			done++
			if m.fail[key] {
				result.Failures = append(result.Failures, &domain.CombinationError{
					PageNumber: pageNumber, Key: key, Combination: combo, Err: errors.New("template broke"),
				})
			} else {
				_ = artifacts.Put(&domain.Artifact{
					Key: key, GenerationID: "gen-1", PageNumber: pageNumber,
					DOCX: []byte("docx " + key), PDF: []byte("pdf " + key),
				})
			}
			if onProgress != nil {
				onProgress(driving.Progress{GenerationID: "gen-1", Completed: done, Total: total})
			}
		}
	}

	m.mu.Lock()
	m.current = artifacts
	m.mu.Unlock()
	return result, nil
}

func (m *mockGeneration) Cancel() {}

func (m *mockGeneration) Current() *domain.ArtifactMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockGeneration) Lookup(
	doc *domain.DocumentContents,
	pageNumber int,
	sel domain.Selection,
) (*domain.Artifact, error) {
	page, err := doc.Page(pageNumber)
	if err != nil {
		return nil, err
	}
	key, err := domain.CombinationKey(pageNumber, sel.ForPage(page), doc)
	if err != nil {
		return nil, err
	}
	if a, ok := m.Current().Get(key); ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

type mockDocument struct {
	mu     sync.Mutex
	sel    domain.Selection
	opened []string
	err    error
}

func (m *mockDocument) RenderFull(
	_ context.Context,
	_ domain.ReportType,
	_ *domain.DocumentContents,
	sel domain.Selection,
	format domain.Format,
) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.sel = sel
	m.mu.Unlock()
	return []byte("full " + string(format)), nil
}

func (m *mockDocument) Open(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, path)
	return nil
}

func testDoc() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{
		{PageNumber: 1, Tags: []domain.Tag{
			{ID: "summary", Title: "Summary", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Sales grew")},
				{ID: 1, Text: domain.NewTextVariation("Record month")},
			}},
			{ID: "points_bullet", Kind: domain.TagKindBulletList, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewListVariation("TVs", "Phones")},
				{ID: 1, Text: domain.NewListVariation("Audio")},
				{ID: 2, Text: domain.NewListVariation("Cameras")},
			}},
		}},
		{PageNumber: 2, Tags: []domain.Tag{
			{ID: "outlook", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Stable")},
			}},
		}},
	}}
}

func salesRequest() domain.ReportRequest {
	return domain.ReportRequest{
		Type:       domain.ReportMonthlySales,
		Period:     domain.Period{Year: 2024, Month: 6},
		Department: domain.DefaultDepartment,
	}
}

func drivingProgress(completed, total int) driving.Progress {
	return driving.Progress{GenerationID: "gen-1", Completed: completed, Total: total}
}
