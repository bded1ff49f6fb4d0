package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure ContentsStore implements the interface.
var _ driven.ContentsStore = (*ContentsStore)(nil)

type cachedContents struct {
	data      []byte
	fetchedAt time.Time
}

// ContentsStore is an in-memory implementation of driven.ContentsStore.
// Contents are stored as JSON so callers never share mutable state.
type ContentsStore struct {
	mu      sync.RWMutex
	entries map[string]cachedContents
	now     func() time.Time
}

// NewContentsStore creates a new in-memory contents store.
func NewContentsStore() *ContentsStore {
	return &ContentsStore{
		entries: make(map[string]cachedContents),
		now:     time.Now,
	}
}

// SaveContents stores contents under key, replacing any previous entry.
func (s *ContentsStore) SaveContents(_ context.Context, key string, doc *domain.DocumentContents) error {
	if key == "" || doc == nil {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling contents: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cachedContents{data: data, fetchedAt: s.now()}
	return nil
}

// GetContents returns the contents and when they were fetched.
func (s *ContentsStore) GetContents(_ context.Context, key string) (*domain.DocumentContents, time.Time, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, domain.ErrNotFound
	}
	var doc domain.DocumentContents
	if err := json.Unmarshal(entry.data, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshalling contents: %w", err)
	}
	return &doc, entry.fetchedAt, nil
}

// DeleteContentsBefore removes entries fetched before t.
func (s *ContentsStore) DeleteContentsBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if entry.fetchedAt.Before(t) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
