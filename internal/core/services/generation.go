package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure GenerationService implements the interface.
var _ driving.GenerationService = (*GenerationService)(nil)

var generateLog = logger.For("generate")

// CombinationRenderer renders a single page combination.
type CombinationRenderer interface {
	RenderCombination(ctx context.Context, doc *domain.DocumentContents, pageNumber int,
		combo domain.Combination) (*domain.Artifact, error)
}

// GenerationService renders every combination of a document on a bounded
// worker pool. Failed combinations are reported and skipped; the rest of the
// batch continues.
type GenerationService struct {
	renderer        CombinationRenderer
	store           driven.ArtifactStore
	concurrency     int
	maxCombinations int
	newID           func() string

	mu     sync.Mutex
	latest string
	cancel context.CancelFunc

	current atomic.Pointer[published]
}

// published is the artifact map of the newest completed cycle together with
// the contents it was rendered from.
type published struct {
	artifacts   *domain.ArtifactMap
	doc         *domain.DocumentContents
	fingerprint string
}

// matches reports whether doc is the contents the artifacts were rendered from.
func (p *published) matches(doc *domain.DocumentContents) bool {
	return doc == p.doc || doc.Fingerprint() == p.fingerprint
}

// NewGenerationService creates a generation service.
// The store is optional - if nil, artifacts live only in memory.
func NewGenerationService(
	renderer CombinationRenderer,
	store driven.ArtifactStore,
	settings domain.GenerationSettings,
) *GenerationService {
	return &GenerationService{
		renderer:        renderer,
		store:           store,
		concurrency:     domain.ClampConcurrency(settings.Concurrency),
		maxCombinations: settings.MaxCombinations,
		newID:           uuid.NewString,
	}
}

// Generate runs one generation cycle. Starting a cycle cancels the previous
// one; a superseded cycle returns domain.ErrGenerationSuperseded and its
// results are never published.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *GenerationService) Generate(
	ctx context.Context,
	doc *domain.DocumentContents,
	onProgress func(driving.Progress),
) (*driving.GenerationResult, error) {
	if doc.IsEmpty() {
		return nil, domain.ErrNoDocument
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validate contents: %w", err)
	}

	total := domain.CountCombinations(doc)
	if s.maxCombinations > 0 && total > s.maxCombinations {
		return nil, fmt.Errorf("%d combinations exceed generation.max_combinations=%d: %w",
			total, s.maxCombinations, domain.ErrTooManyCombinations)
	}

	fingerprint := doc.Fingerprint()
	id := s.newID()
	cycleCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	// Artifacts of other contents must not be served while this cycle runs.
	if p := s.current.Load(); p != nil && p.fingerprint != fingerprint {
		s.current.Store(nil)
	}
	s.latest = id
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.latest == id {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	gen := domain.Generation{
		ID:        id,
		StartedAt: time.Now(),
		Total:     total,
		Status:    domain.GenerationRunning,
	}
	s.saveGeneration(ctx, &gen)

	generateLog.Info("generation %s: %d combinations, concurrency %d", id, total, s.concurrency)

	artifacts := domain.NewArtifactMap(id)
	result := &driving.GenerationResult{Artifacts: artifacts}

	var (
		progressMu sync.Mutex
		completed  int
		failed     int
	)
	record := func(err *domain.CombinationError) {
		progressMu.Lock()
		defer progressMu.Unlock()
		completed++
		if err != nil {
			failed++
			result.Failures = append(result.Failures, err)
		}
		if onProgress != nil && cycleCtx.Err() == nil {
			onProgress(driving.Progress{GenerationID: id, Completed: completed, Failed: failed, Total: total})
		}
	}

	combos := domain.EnumerateCombinations(doc)
	var g errgroup.Group
	g.SetLimit(s.concurrency)

dispatch:
	for _, pageNumber := range doc.PageNumbers() {
		for _, combo := range combos[pageNumber] {
			if cycleCtx.Err() != nil {
				break dispatch
			}
			g.Go(func() error {
				if cycleCtx.Err() != nil {
					return nil
				}
				artifact, err := s.renderer.RenderCombination(cycleCtx, doc, pageNumber, combo)
				if cycleCtx.Err() != nil {
					return nil
				}
				if err == nil {
					artifact.GenerationID = id
					err = artifacts.Put(artifact)
				}
				if err != nil {
					generateLog.Warn("generation %s: %v", id, err)
					record(toCombinationError(doc, pageNumber, combo, err))
					return nil
				}
				record(nil)
				s.saveArtifact(ctx, artifact)
				return nil
			})
		}
	}
	_ = g.Wait()

	gen.FinishedAt = time.Now()
	gen.Completed = completed - failed
	gen.Failed = failed

	s.mu.Lock()
	superseded := s.latest != id
	cancelled := cycleCtx.Err() != nil
	if !superseded && !cancelled {
		s.current.Store(&published{artifacts: artifacts, doc: doc, fingerprint: fingerprint})
	}
	s.mu.Unlock()

	switch {
	case superseded:
		gen.Status = domain.GenerationSuperseded
		result.Generation = gen
		s.saveGeneration(ctx, &gen)
		return result, fmt.Errorf("generation %s: %w", id, domain.ErrGenerationSuperseded)
	case cancelled:
		gen.Status = domain.GenerationCancelled
		result.Generation = gen
		s.saveGeneration(context.WithoutCancel(ctx), &gen)
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("generation %s: %w", id, err)
		}
		return result, fmt.Errorf("generation %s: %w", id, context.Canceled)
	}

	gen.Status = domain.GenerationCompleted
	result.Generation = gen
	s.saveGeneration(ctx, &gen)
	generateLog.Info("generation %s: %d rendered, %d failed", id, gen.Completed, gen.Failed)
	return result, nil
}

// Cancel abandons the running cycle, if any.
func (s *GenerationService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Current returns the artifacts of the newest completed cycle, or nil.
func (s *GenerationService) Current() *domain.ArtifactMap {
	if p := s.current.Load(); p != nil {
		return p.artifacts
	}
	return nil
}

// Lookup returns the artifact for a page under the given selection. The key is
// derived exactly as during generation, so defaults resolve identically.
// Artifacts rendered from other contents are never returned.
func (s *GenerationService) Lookup(
	doc *domain.DocumentContents,
	pageNumber int,
	sel domain.Selection,
) (*domain.Artifact, error) {
	if doc.IsEmpty() {
		return nil, domain.ErrNoDocument
	}
	page, err := doc.Page(pageNumber)
	if err != nil {
		return nil, err
	}
	key, err := domain.CombinationKey(pageNumber, sel.ForPage(page), doc)
	if err != nil {
		return nil, err
	}
	p := s.current.Load()
	if p == nil || !p.matches(doc) {
		return nil, fmt.Errorf("artifact %s: %w", key, domain.ErrNotFound)
	}
	artifact, ok := p.artifacts.Get(key)
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", key, domain.ErrNotFound)
	}
	return artifact, nil
}

func (s *GenerationService) saveGeneration(ctx context.Context, gen *domain.Generation) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveGeneration(ctx, gen); err != nil {
		generateLog.Warn("save generation %s: %v", gen.ID, err)
	}
}

func (s *GenerationService) saveArtifact(ctx context.Context, artifact *domain.Artifact) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveArtifact(ctx, artifact); err != nil {
		generateLog.Warn("save artifact %s: %v", artifact.Key, err)
	}
}

func toCombinationError(
	doc *domain.DocumentContents,
	pageNumber int,
	combo domain.Combination,
	err error,
) *domain.CombinationError {
	var ce *domain.CombinationError
	if errors.As(err, &ce) {
		return ce
	}
	key, _ := domain.CombinationKey(pageNumber, combo, doc)
	return &domain.CombinationError{PageNumber: pageNumber, Key: key, Combination: combo, Err: err}
}
