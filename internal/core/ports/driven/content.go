package driven

import (
	"context"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// ContentSource retrieves report contents from the retrieval backend.
type ContentSource interface {
	// StreamContents opens the retrieval event stream and calls onEvent for
	// every init, progress and done event in arrival order. It returns when
	// the stream ends, onEvent returns an error, or ctx is cancelled.
	StreamContents(ctx context.Context, req domain.ReportRequest, onEvent func(domain.RetrievalEvent) error) error

	// FetchContents retrieves the contents in a single request.
	FetchContents(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error)
}

// ExtractionService queries the extraction and retrieval endpoints used by the
// batch proposal. Responses are decoded into out.
type ExtractionService interface {
	// Extract returns the structured fields for a fixed tag name.
	Extract(ctx context.Context, tag string, out any) error

	// Retrieve returns the top-k items of a collection ranked against query.
	Retrieve(ctx context.Context, query, collection string, k int, out any) error
}

// TextNormaliser turns free text into list items.
type TextNormaliser interface {
	// ListItems returns the items of a bulleted text. Text without list
	// markup yields one item per non-empty line.
	ListItems(text string) []string
}
