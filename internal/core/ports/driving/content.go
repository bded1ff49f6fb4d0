package driving

import (
	"context"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// ContentService retrieves and caches report contents.
type ContentService interface {
	// Fetch retrieves contents, classifying tags and caching the result.
	// onProgress, when non-nil, is called after every stream event.
	Fetch(ctx context.Context, req domain.ReportRequest, onProgress func(*domain.RetrievalProgress)) (*domain.DocumentContents, error)

	// FetchOnce retrieves contents without the event stream.
	FetchOnce(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error)

	// Cached returns previously fetched contents.
	// Returns domain.ErrNotFound if nothing is cached.
	Cached(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error)
}
