package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// contentsStore implements driven.ContentsStore.
type contentsStore struct {
	store *Store
}

var _ driven.ContentsStore = (*contentsStore)(nil)

// SaveContents stores contents under key, replacing any previous entry.
func (s *contentsStore) SaveContents(ctx context.Context, key string, doc *domain.DocumentContents) error {
	if key == "" || doc == nil {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling contents: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO contents_cache (cache_key, contents, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			contents = excluded.contents,
			fetched_at = excluded.fetched_at
	`, key, string(data), s.store.now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving contents: %w", err)
	}
	return nil
}

// GetContents returns the contents and when they were fetched.
func (s *contentsStore) GetContents(ctx context.Context, key string) (*domain.DocumentContents, time.Time, error) {
	var data string
	var fetchedAt sql.NullInt64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT contents, fetched_at FROM contents_cache WHERE cache_key = ?", key,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("contents %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("querying contents: %w", err)
	}

	var doc domain.DocumentContents
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshalling contents: %w", err)
	}
	return &doc, fromUnixNano(fetchedAt), nil
}

// DeleteContentsBefore removes entries fetched before t.
func (s *contentsStore) DeleteContentsBefore(ctx context.Context, t time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM contents_cache WHERE fetched_at < ?", t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("deleting contents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted contents: %w", err)
	}
	return int(n), nil
}
