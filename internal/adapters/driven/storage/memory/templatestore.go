package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

// TemplateStore serves templates from memory.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string][]byte
	fetches   map[string]int
}

// NewTemplateStore creates a template store holding the given templates.
func NewTemplateStore(templates map[string][]byte) *TemplateStore {
	s := &TemplateStore{
		templates: make(map[string][]byte, len(templates)),
		fetches:   make(map[string]int),
	}
	for name, data := range templates {
		s.templates[name] = data
	}
	return s
}

// Put adds or replaces a template.
func (s *TemplateStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = data
}

// Template returns a copy of the named template.
func (s *TemplateStore) Template(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[name]++
	data, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Fetches returns how many times a template was requested.
func (s *TemplateStore) Fetches(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[name]
}
