// Package remote loads document templates from an HTTP server that serves
// them under <base>/templates/<name>.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TemplateStore = (*Store)(nil)

// DefaultTimeout bounds a single template download.
const DefaultTimeout = 30 * time.Second

// maxTemplateSize caps a downloaded template.
const maxTemplateSize = 64 << 20

// Config configures the store.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Store downloads templates over HTTP.
type Store struct {
	baseURL string
	client  *http.Client
}

// New creates a store. BaseURL is required.
func New(cfg Config) (*Store, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("templates base URL is required: %w", domain.ErrInvalidInput)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("templates base URL %q: %w", base, domain.ErrInvalidInput)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Store{baseURL: base, client: client}, nil
}

// Template downloads a template by name.
func (s *Store) Template(ctx context.Context, name string) ([]byte, error) {
	endpoint := s.baseURL + "/templates/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrFetchFailure, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrFetchFailure, endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read template %s: %w", domain.ErrFetchFailure, name, err)
	}
	return data, nil
}
