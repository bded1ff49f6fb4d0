package domain

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Format is an artifact output format.
type Format string

// Supported formats.
const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// ParseFormat validates a user-supplied format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOCX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("format %q: %w", s, ErrInvalidInput)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Artifact is the rendered output of one page combination.
type Artifact struct {
	Key          string
	GenerationID string
	PageNumber   int
	Combination  Combination

	// DOCX holds the rendered document.
	DOCX []byte

	// PDF holds the converted document. Empty when conversion was skipped.
	PDF []byte

	CreatedAt time.Time
}

// Bytes returns the blob for the requested format.
func (a *Artifact) Bytes(f Format) ([]byte, error) {
	switch f {
	case FormatDOCX:
		return a.DOCX, nil
	case FormatPDF:
		if len(a.PDF) == 0 {
			return nil, fmt.Errorf("artifact %s has no pdf: %w", a.Key, ErrNotFound)
		}
		return a.PDF, nil
	default:
		return nil, fmt.Errorf("format %q: %w", f, ErrInvalidInput)
	}
}

// ArtifactMap holds the artifacts of one generation cycle keyed by
// combination key. Entries are write-once.
type ArtifactMap struct {
	generationID string

	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// NewArtifactMap creates an empty map owned by a generation cycle.
func NewArtifactMap(generationID string) *ArtifactMap {
	return &ArtifactMap{
		generationID: generationID,
		artifacts:    make(map[string]*Artifact),
	}
}

// GenerationID returns the owning generation cycle.
func (m *ArtifactMap) GenerationID() string {
	return m.generationID
}

// Put stores an artifact. A second write to the same key fails.
func (m *ArtifactMap) Put(a *Artifact) error {
	if a == nil || a.Key == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artifacts[a.Key]; ok {
		return fmt.Errorf("artifact %s: %w", a.Key, ErrAlreadyExists)
	}
	m.artifacts[a.Key] = a
	return nil
}

// Get returns the artifact for a key.
func (m *ArtifactMap) Get(key string) (*Artifact, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[key]
	return a, ok
}

// Len returns the number of artifacts.
func (m *ArtifactMap) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}

// Keys returns all keys in sorted order.
func (m *ArtifactMap) Keys() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.artifacts))
	for k := range m.artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenerationStatus is the lifecycle state of a generation cycle.
type GenerationStatus string

// Generation states.
const (
	GenerationRunning    GenerationStatus = "running"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationSuperseded GenerationStatus = "superseded"
	GenerationCancelled  GenerationStatus = "cancelled"
)

// Generation records one "generate all" cycle.
type Generation struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Completed  int
	Failed     int
	Status     GenerationStatus
}
