package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// ContentsStore caches retrieved document contents.
type ContentsStore interface {
	// SaveContents stores contents under key, replacing any previous entry.
	SaveContents(ctx context.Context, key string, doc *domain.DocumentContents) error

	// GetContents returns the contents and when they were fetched.
	// Returns domain.ErrNotFound if nothing is cached under key.
	GetContents(ctx context.Context, key string) (*domain.DocumentContents, time.Time, error)

	// DeleteContentsBefore removes entries fetched before t.
	DeleteContentsBefore(ctx context.Context, t time.Time) (int, error)
}

// ArtifactStore persists generation cycles and their artifacts.
type ArtifactStore interface {
	// SaveGeneration creates or updates a generation record.
	SaveGeneration(ctx context.Context, gen *domain.Generation) error

	// SaveArtifact stores an artifact of a generation.
	SaveArtifact(ctx context.Context, artifact *domain.Artifact) error

	// GetArtifact returns an artifact by generation and key.
	// Returns domain.ErrNotFound if absent.
	GetArtifact(ctx context.Context, generationID, key string) (*domain.Artifact, error)

	// ListGenerations returns recent generations, newest first.
	ListGenerations(ctx context.Context, limit int) ([]domain.Generation, error)

	// PruneGenerations keeps the newest keep generations and deletes the rest
	// with their artifacts. Returns the number of generations removed.
	PruneGenerations(ctx context.Context, keep int) (int, error)
}
