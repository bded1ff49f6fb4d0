package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure ContentService implements the interface.
var _ driving.ContentService = (*ContentService)(nil)

var contentLog = logger.For("contents")

// ContentService retrieves report contents, resolves tag kinds once on
// receipt and caches the result.
type ContentService struct {
	source     driven.ContentSource
	cache      driven.ContentsStore
	normaliser driven.TextNormaliser
	classifier domain.TagClassifier
}

// NewContentService creates a content service.
// The cache and normaliser are optional.
func NewContentService(
	source driven.ContentSource,
	cache driven.ContentsStore,
	normaliser driven.TextNormaliser,
	classifier domain.TagClassifier,
) *ContentService {
	return &ContentService{
		source:     source,
		cache:      cache,
		normaliser: normaliser,
		classifier: classifier,
	}
}

// Fetch streams contents from the retrieval backend, driving the progress
// state machine with every event.
func (s *ContentService) Fetch(
	ctx context.Context,
	req domain.ReportRequest,
	onProgress func(*domain.RetrievalProgress),
) (*domain.DocumentContents, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Retrieval")
	contentLog.Info("streaming %s %s for %s", req.Type, req.Period, req.Department)

	progress := domain.NewRetrievalProgress()
	notify := func() {
		if onProgress != nil {
			onProgress(progress)
		}
	}

	err := s.source.StreamContents(ctx, req, func(ev domain.RetrievalEvent) error {
		if err := progress.Apply(ev); err != nil {
			return err
		}
		contentLog.Debug("event %s: state %s, %.0f%%", ev.Type, progress.State(), progress.Overall())
		notify()
		return nil
	})
	if err == nil && progress.State() != domain.RetrievalDone {
		err = fmt.Errorf("%w: stream ended in state %s", domain.ErrServiceFailure, progress.State())
	}
	if err != nil {
		if !progress.State().IsTerminal() {
			_ = progress.Fail(err)
			notify()
		}
		return nil, fmt.Errorf("retrieve contents: %w", asServiceFailure(err))
	}

	return s.accept(ctx, req, progress.Contents())
}

// FetchOnce retrieves contents in a single request.
func (s *ContentService) FetchOnce(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.source.FetchContents(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("retrieve contents: %w", asServiceFailure(err))
	}
	return s.accept(ctx, req, doc)
}

// Cached returns previously fetched contents.
func (s *ContentService) Cached(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("contents cache: %w", domain.ErrNotFound)
	}
	doc, fetchedAt, err := s.cache.GetContents(ctx, req.CacheKey())
	if err != nil {
		return nil, err
	}
	contentLog.Debug("cache hit for %q fetched %s", req.CacheKey(), fetchedAt.Format("2006-01-02 15:04"))
	return doc, nil
}

// Prepare classifies tags, normalises bullet text and orders pages.
func (s *ContentService) Prepare(doc *domain.DocumentContents) {
	s.classifier.Apply(doc)
	for i := range doc.Pages {
		for j := range doc.Pages[i].Tags {
			tag := &doc.Pages[i].Tags[j]
			if tag.Kind != domain.TagKindBulletList || s.normaliser == nil {
				continue
			}
			for k := range tag.Variations {
				v := &tag.Variations[k]
				if !v.Text.IsList() {
					v.Text = domain.NewListVariation(s.normaliser.ListItems(v.Text.String())...)
				}
			}
		}
	}
	doc.SortPages()
}

func (s *ContentService) accept(
	ctx context.Context,
	req domain.ReportRequest,
	doc *domain.DocumentContents,
) (*domain.DocumentContents, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrServiceFailure)
	}
	s.Prepare(doc)
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceFailure, err)
	}

	contentLog.Info("received %d pages, %d combinations", len(doc.Pages), domain.CountCombinations(doc))

	if s.cache != nil {
		if err := s.cache.SaveContents(ctx, req.CacheKey(), doc); err != nil {
			contentLog.Warn("cache contents: %v", err)
		}
	}
	return doc, nil
}

func asServiceFailure(err error) error {
	if errors.Is(err, domain.ErrServiceFailure) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrServiceFailure, err)
}
