package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

type fakeSource struct {
	events    []domain.RetrievalEvent
	streamErr error
	doc       *domain.DocumentContents
	fetchErr  error
	requests  []domain.ReportRequest
}

func (s *fakeSource) StreamContents(
	ctx context.Context,
	req domain.ReportRequest,
	onEvent func(domain.RetrievalEvent) error,
) error {
	s.requests = append(s.requests, req)
	for _, ev := range s.events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onEvent(ev); err != nil {
			return err
		}
	}
	return s.streamErr
}

func (s *fakeSource) FetchContents(_ context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	s.requests = append(s.requests, req)
	return s.doc, s.fetchErr
}

type lineNormaliser struct{}

func (lineNormaliser) ListItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func salesRequest() domain.ReportRequest {
	return domain.ReportRequest{
		Type:       domain.ReportMonthlySales,
		Period:     domain.Period{Year: 2024, Month: 6},
		Department: domain.DefaultDepartment,
	}
}

// rawDoc is contents as they arrive: unsorted pages, no kinds, bullets as text.
func rawDoc() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{
		{PageNumber: 2, Tags: []domain.Tag{
			{ID: "summary", Variations: []domain.Variation{{ID: 0, Text: domain.NewTextVariation("Fine")}}},
		}},
		{PageNumber: 1, Tags: []domain.Tag{
			{ID: "key_bullet", Variations: []domain.Variation{{ID: 0, Text: domain.NewTextVariation("- one\n- two")}}},
			{ID: "revenue_chart", Variations: []domain.Variation{{ID: 0, Text: domain.NewTextVariation("{}")}}},
		}},
	}}
}

func streamOf(doc *domain.DocumentContents) []domain.RetrievalEvent {
	return []domain.RetrievalEvent{
		{Type: domain.EventInit, TotalPages: 2},
		{Type: domain.EventProgress, Page: 1, Tag: 1, TotalTags: 2},
		{Type: domain.EventProgress, Page: 1, Tag: 2, TotalTags: 2},
		{Type: domain.EventProgress, Page: 2, Tag: 1, TotalTags: 1},
		{Type: domain.EventDone, Contents: doc},
	}
}

func TestContentService_Fetch(t *testing.T) {
	source := &fakeSource{events: streamOf(rawDoc())}
	cache := memory.NewContentsStore()
	svc := NewContentService(source, cache, lineNormaliser{}, domain.DefaultTagClassifier())

	var overall []float64
	var states []domain.RetrievalState
	doc, err := svc.Fetch(context.Background(), salesRequest(), func(p *domain.RetrievalProgress) {
		overall = append(overall, p.Overall())
		states = append(states, p.State())
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, []int{doc.Pages[0].PageNumber, doc.Pages[1].PageNumber})

	bullets, err := doc.Tag("key_bullet")
	require.NoError(t, err)
	assert.Equal(t, domain.TagKindBulletList, bullets.Kind)
	assert.Equal(t, []string{"one", "two"}, bullets.Variations[0].Text.Lines())

	chart, err := doc.Tag("revenue_chart")
	require.NoError(t, err)
	assert.Equal(t, domain.TagKindChart, chart.Kind)

	require.Len(t, overall, 5)
	for i := 1; i < len(overall); i++ {
		assert.GreaterOrEqual(t, overall[i], overall[i-1])
	}
	assert.Equal(t, domain.RetrievalDone, states[len(states)-1])

	cached, err := svc.Cached(context.Background(), salesRequest())
	require.NoError(t, err)
	assert.Len(t, cached.Pages, 2)
}

func TestContentService_Fetch_InvalidRequest(t *testing.T) {
	source := &fakeSource{}
	svc := NewContentService(source, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.Fetch(context.Background(), domain.ReportRequest{Type: domain.ReportMonthlySales}, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, source.requests)
}

func TestContentService_Fetch_StreamEndsEarly(t *testing.T) {
	source := &fakeSource{events: streamOf(rawDoc())[:2]}
	svc := NewContentService(source, nil, nil, domain.DefaultTagClassifier())

	var last *domain.RetrievalProgress
	_, err := svc.Fetch(context.Background(), salesRequest(), func(p *domain.RetrievalProgress) { last = p })

	assert.ErrorIs(t, err, domain.ErrServiceFailure)
	require.NotNil(t, last)
	assert.Equal(t, domain.RetrievalFailed, last.State())
}

func TestContentService_Fetch_OutOfOrderEvent(t *testing.T) {
	events := []domain.RetrievalEvent{
		{Type: domain.EventProgress, Page: 1, Tag: 1, TotalTags: 2},
	}
	svc := NewContentService(&fakeSource{events: events}, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.Fetch(context.Background(), salesRequest(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, err, domain.ErrServiceFailure)
}

func TestContentService_Fetch_SourceError(t *testing.T) {
	source := &fakeSource{streamErr: errors.New("connection refused")}
	svc := NewContentService(source, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.Fetch(context.Background(), salesRequest(), nil)

	assert.ErrorIs(t, err, domain.ErrServiceFailure)
	assert.True(t, domain.IsTransient(err))
}

func TestContentService_Fetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewContentService(&fakeSource{events: streamOf(rawDoc())}, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.Fetch(ctx, salesRequest(), nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrServiceFailure)
}

func TestContentService_FetchOnce(t *testing.T) {
	source := &fakeSource{doc: rawDoc()}
	svc := NewContentService(source, nil, lineNormaliser{}, domain.DefaultTagClassifier())

	doc, err := svc.FetchOnce(context.Background(), salesRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages[0].PageNumber)
	assert.Len(t, source.requests, 1)
}

func TestContentService_FetchOnce_InvalidContents(t *testing.T) {
	doc := &domain.DocumentContents{Pages: []domain.Page{{PageNumber: 0}}}
	svc := NewContentService(&fakeSource{doc: doc}, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.FetchOnce(context.Background(), salesRequest())

	assert.ErrorIs(t, err, domain.ErrServiceFailure)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContentService_FetchOnce_EmptyResponse(t *testing.T) {
	svc := NewContentService(&fakeSource{}, nil, nil, domain.DefaultTagClassifier())

	_, err := svc.FetchOnce(context.Background(), salesRequest())

	assert.ErrorIs(t, err, domain.ErrServiceFailure)
}

func TestContentService_Cached_Miss(t *testing.T) {
	withCache := NewContentService(&fakeSource{}, memory.NewContentsStore(), nil, domain.DefaultTagClassifier())
	withoutCache := NewContentService(&fakeSource{}, nil, nil, domain.DefaultTagClassifier())

	_, err := withCache.Cached(context.Background(), salesRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = withoutCache.Cached(context.Background(), salesRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
