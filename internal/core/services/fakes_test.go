package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// sampleDoc has 4 combinations on page 1 and 3 on page 2.
func sampleDoc() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{
		{PageNumber: 1, Tags: []domain.Tag{
			{ID: "headline", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Sales up")},
				{ID: 1, Text: domain.NewTextVariation("Record quarter")},
			}},
			{ID: "highlights_bullet", Kind: domain.TagKindBulletList, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewListVariation("TVs", "Phones")},
				{ID: 1, Text: domain.NewListVariation("Audio")},
			}},
		}},
		{PageNumber: 2, Tags: []domain.Tag{
			{ID: "outlook", Kind: domain.TagKindPlainText, Variations: []domain.Variation{
				{ID: 0, Text: domain.NewTextVariation("Stable")},
				{ID: 1, Text: domain.NewTextVariation("Growing")},
				{ID: 2, Text: domain.NewTextVariation("Uncertain")},
			}},
		}},
	}}
}

// fakeRenderer encodes the bound data as sorted key=value lines.
type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	data  []map[string]any

	// failOn fails any render whose data contains this string value.
	failOn string
	err    error
}

func (r *fakeRenderer) Render(template []byte, data map[string]any) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.data = append(r.data, data)
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.Write(template)
	for _, k := range keys {
		if s, ok := data[k].(string); ok && r.failOn != "" && s == r.failOn {
			return nil, fmt.Errorf("no value for tag {%s}", k)
		}
		fmt.Fprintf(&b, "\n%s=%v", k, data[k])
	}
	return []byte(b.String()), nil
}

func (r *fakeRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeConverter struct {
	mu        sync.Mutex
	filenames []string
	err       error
}

func (c *fakeConverter) Convert(_ context.Context, doc []byte, filename string) ([]byte, error) {
	c.mu.Lock()
	c.filenames = append(c.filenames, filename)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte("%PDF-"), doc...), nil
}

// blockingRenderer parks every render until its context ends while block is set.
type blockingRenderer struct {
	inner   *fakeRenderer
	mu      sync.Mutex
	block   bool
	started chan struct{}
	once    sync.Once
}

func newBlockingRenderer() *blockingRenderer {
	return &blockingRenderer{
		inner:   &fakeRenderer{},
		block:   true,
		started: make(chan struct{}),
	}
}

func (r *blockingRenderer) SetBlock(block bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = block
}

func (r *blockingRenderer) RenderCombination(
	ctx context.Context,
	doc *domain.DocumentContents,
	pageNumber int,
	combo domain.Combination,
) (*domain.Artifact, error) {
	r.mu.Lock()
	block := r.block
	r.mu.Unlock()
	if block {
		r.once.Do(func() { close(r.started) })
		<-ctx.Done()
		return nil, ctx.Err()
	}
	key, err := domain.CombinationKey(pageNumber, combo, doc)
	if err != nil {
		return nil, err
	}
	return &domain.Artifact{Key: key, PageNumber: pageNumber, Combination: combo.Clone(), DOCX: []byte(key)}, nil
}

type fakeStage struct {
	name  string
	apply func(p domain.Proposal) (domain.Proposal, error)
}

func (s fakeStage) Name() string { return s.name }

func (s fakeStage) Apply(_ context.Context, p domain.Proposal) (domain.Proposal, error) {
	return s.apply(p)
}
