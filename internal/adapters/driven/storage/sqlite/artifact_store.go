package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// SaveGeneration creates or updates a generation record.
func (s *artifactStore) SaveGeneration(ctx context.Context, gen *domain.Generation) error {
	if gen == nil || gen.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO generations (id, started_at, finished_at, total, completed, failed, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			total = excluded.total,
			completed = excluded.completed,
			failed = excluded.failed,
			status = excluded.status
	`, gen.ID, gen.StartedAt.UnixNano(), unixNano(gen.FinishedAt),
		gen.Total, gen.Completed, gen.Failed, string(gen.Status))
	if err != nil {
		return fmt.Errorf("saving generation: %w", err)
	}
	return nil
}

// SaveArtifact stores an artifact of a known generation.
func (s *artifactStore) SaveArtifact(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil || artifact.Key == "" {
		return domain.ErrInvalidInput
	}
	combo, err := json.Marshal(artifact.Combination)
	if err != nil {
		return fmt.Errorf("marshalling combination: %w", err)
	}
	var pdf any
	if len(artifact.PDF) > 0 {
		pdf = artifact.PDF
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO artifacts (generation_id, artifact_key, page_number, combination, docx, pdf, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM generations WHERE id = ?)
		ON CONFLICT(generation_id, artifact_key) DO UPDATE SET
			page_number = excluded.page_number,
			combination = excluded.combination,
			docx = excluded.docx,
			pdf = excluded.pdf,
			created_at = excluded.created_at
	`, artifact.GenerationID, artifact.Key, artifact.PageNumber, string(combo),
		artifact.DOCX, pdf, artifact.CreatedAt.UnixNano(), artifact.GenerationID)
	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("generation %s: %w", artifact.GenerationID, domain.ErrNotFound)
	}
	return nil
}

// GetArtifact returns an artifact by generation and key.
func (s *artifactStore) GetArtifact(ctx context.Context, generationID, key string) (*domain.Artifact, error) {
	var (
		artifact  = domain.Artifact{GenerationID: generationID, Key: key}
		combo     string
		createdAt sql.NullInt64
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT page_number, combination, docx, pdf, created_at
		FROM artifacts WHERE generation_id = ? AND artifact_key = ?
	`, generationID, key).Scan(&artifact.PageNumber, &combo, &artifact.DOCX, &artifact.PDF, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %s/%s: %w", generationID, key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying artifact: %w", err)
	}

	if err := json.Unmarshal([]byte(combo), &artifact.Combination); err != nil {
		return nil, fmt.Errorf("unmarshalling combination: %w", err)
	}
	artifact.CreatedAt = fromUnixNano(createdAt)
	return &artifact, nil
}

// ListGenerations returns recent generations, newest first. A limit of zero
// or less returns all of them.
func (s *artifactStore) ListGenerations(ctx context.Context, limit int) ([]domain.Generation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, total, completed, failed, status
		FROM generations
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var gens []domain.Generation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			gen               domain.Generation
			started, finished sql.NullInt64
			status            string
		)
		if err := rows.Scan(&gen.ID, &started, &finished, &gen.Total, &gen.Completed, &gen.Failed, &status); err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		gen.StartedAt = fromUnixNano(started)
		gen.FinishedAt = fromUnixNano(finished)
		gen.Status = domain.GenerationStatus(status)
		gens = append(gens, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generations: %w", err)
	}
	return gens, nil
}

// PruneGenerations keeps the newest keep generations and deletes the rest
// together with their artifacts.
func (s *artifactStore) PruneGenerations(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stale = `SELECT id FROM generations ORDER BY started_at DESC LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE generation_id IN ("+stale+")", keep); err != nil {
		return 0, fmt.Errorf("pruning artifacts: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM generations WHERE id IN ("+stale+")", keep)
	if err != nil {
		return 0, fmt.Errorf("pruning generations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned generations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing prune: %w", err)
	}
	return int(n), nil
}
