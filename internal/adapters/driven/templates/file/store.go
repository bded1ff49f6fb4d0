// Package file loads document templates from a local directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TemplateStore = (*Store)(nil)

var fileLog = logger.For("templates")

// Store reads templates from a directory. While watching, template bytes are
// cached and invalidated when the file changes on disk.
type Store struct {
	dir string

	mu       sync.RWMutex
	cache    map[string][]byte
	watcher  *fsnotify.Watcher
	watching bool
}

// New creates a store over dir.
func New(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string][]byte),
	}
}

// Dir returns the template directory.
func (s *Store) Dir() string {
	return s.dir
}

// Template reads a template by file name.
func (s *Store) Template(_ context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), cached...), nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("template %s in %s: %w", name, s.dir, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read template %s: %w", domain.ErrFetchFailure, name, err)
	}

	s.mu.Lock()
	if s.watching {
		s.cache[name] = append([]byte(nil), data...)
	}
	s.mu.Unlock()
	return data, nil
}

// Watch starts caching templates and invalidating them on file changes.
// The watcher stops when ctx is cancelled or Close is called.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watching {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.watcher = watcher
	s.watching = true

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fileLog.Warn("template watcher: %v", err)
		}
	}
}

// handleFsEvent drops the cached copy of a changed template. Returns whether
// the event affected a template.
func (s *Store) handleFsEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return false
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}

	s.mu.Lock()
	_, cached := s.cache[name]
	delete(s.cache, name)
	s.mu.Unlock()

	if cached {
		fileLog.Debug("template %s changed, dropped cached copy", name)
	}
	return true
}

// Close stops watching and clears the cache.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.watching {
		return nil
	}
	s.watching = false
	s.cache = make(map[string][]byte)
	return s.watcher.Close()
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("template name %q: %w", name, domain.ErrInvalidInput)
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
