package mcp

import (
	"context"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	cached  map[string]*domain.DocumentContents
	fetched *domain.DocumentContents
	err     error
	fetches int
}

func (m *mockContentService) Fetch(
	_ context.Context,
	_ domain.ReportRequest,
	_ func(*domain.RetrievalProgress),
) (*domain.DocumentContents, error) {
	m.fetches++
	return m.fetched, m.err
}

func (m *mockContentService) FetchOnce(_ context.Context, _ domain.ReportRequest) (*domain.DocumentContents, error) {
	m.fetches++
	return m.fetched, m.err
}

func (m *mockContentService) Cached(_ context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	if doc, ok := m.cached[req.CacheKey()]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func testDoc() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{
		{PageNumber: 1, Tags: []domain.Tag{
			{ID: "summary", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("A")},
				{ID: 1, Text: domain.NewTextVariation("B")},
			}},
			{ID: "points_bullet", Kind: domain.TagKindBulletList, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewListVariation("x", "y")},
				{ID: 1, Text: domain.NewListVariation("z")},
			}},
		}},
		{PageNumber: 2, Tags: []domain.Tag{
			{ID: "outlook", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Up")},
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

func cachedService() *mockContentService {
	return &mockContentService{cached: map[string]*domain.DocumentContents{
		salesRequest().CacheKey(): testDoc(),
	}}
}
