package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu          sync.RWMutex
	generations map[string]domain.Generation
	artifacts   map[string]map[string]domain.Artifact
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		generations: make(map[string]domain.Generation),
		artifacts:   make(map[string]map[string]domain.Artifact),
	}
}

// SaveGeneration creates or updates a generation record.
func (s *ArtifactStore) SaveGeneration(_ context.Context, gen *domain.Generation) error {
	if gen == nil || gen.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[gen.ID] = *gen
	return nil
}

// SaveArtifact stores an artifact of a generation.
func (s *ArtifactStore) SaveArtifact(_ context.Context, artifact *domain.Artifact) error {
	if artifact == nil || artifact.Key == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.generations[artifact.GenerationID]; !ok {
		return domain.ErrNotFound
	}
	if s.artifacts[artifact.GenerationID] == nil {
		s.artifacts[artifact.GenerationID] = make(map[string]domain.Artifact)
	}
	s.artifacts[artifact.GenerationID][artifact.Key] = *artifact
	return nil
}

// GetArtifact returns an artifact by generation and key.
func (s *ArtifactStore) GetArtifact(_ context.Context, generationID, key string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[generationID][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &artifact, nil
}

// ListGenerations returns recent generations, newest first.
func (s *ArtifactStore) ListGenerations(_ context.Context, limit int) ([]domain.Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gens := make([]domain.Generation, 0, len(s.generations))
	for _, g := range s.generations {
		gens = append(gens, g)
	}
	sort.Slice(gens, func(i, j int) bool {
		return gens[i].StartedAt.After(gens[j].StartedAt)
	})
	if limit > 0 && len(gens) > limit {
		gens = gens[:limit]
	}
	return gens, nil
}

// PruneGenerations keeps the newest keep generations.
func (s *ArtifactStore) PruneGenerations(ctx context.Context, keep int) (int, error) {
	gens, err := s.ListGenerations(ctx, 0)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(gens) <= keep {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range gens[keep:] {
		delete(s.generations, g.ID)
		delete(s.artifacts, g.ID)
	}
	return len(gens) - keep, nil
}
