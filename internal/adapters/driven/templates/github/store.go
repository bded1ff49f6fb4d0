// Package github loads document templates from a path in a GitHub repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TemplateStore = (*Store)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// MaxTemplateSize caps a downloaded template (64MB).
const MaxTemplateSize = 64 << 20

// Config configures the store.
type Config struct {
	// Repo is "owner/repo".
	Repo string

	// Path is the directory holding the templates; empty for the root.
	Path string

	// Ref is a branch, tag or commit; empty for the default branch.
	Ref string

	// Token authenticates requests. Public repositories need none.
	Token string

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
}

// Store downloads templates through the GitHub contents API.
type Store struct {
	gh          *gh.Client
	owner       string
	repo        string
	dir         string
	ref         string
	rateLimiter *RateLimiter
}

// New creates a store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("github repo %q must be owner/repo: %w", cfg.Repo, domain.ErrInvalidInput)
	}

	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = DefaultTimeout
	} else {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	client := gh.NewClient(hc)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github base URL %q: %w", cfg.BaseURL, domain.ErrInvalidInput)
		}
		client.BaseURL = u
	}

	return &Store{
		gh:          client,
		owner:       owner,
		repo:        repo,
		dir:         strings.Trim(cfg.Path, "/"),
		ref:         cfg.Ref,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// Template downloads a template by file name.
func (s *Store) Template(ctx context.Context, name string) ([]byte, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	filePath := path.Join(s.dir, name)
	opts := &gh.RepositoryContentGetOptions{Ref: s.ref}
	rc, resp, err := s.gh.Repositories.DownloadContents(ctx, s.owner, s.repo, filePath, opts)
	if resp != nil {
		s.rateLimiter.Update(resp.Response)
	}
	if err != nil {
		return nil, s.wrapError(err, filePath)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrFetchFailure, filePath, err)
	}
	return data, nil
}

// wrapError converts go-github errors to domain errors.
func (s *Store) wrapError(err error, filePath string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	where := fmt.Sprintf("%s/%s/%s", s.owner, s.repo, filePath)

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%w: %w: %s: %w", domain.ErrFetchFailure, domain.ErrRateLimited, where, err)
	}
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("template %s: %w", where, domain.ErrNotFound)
	}
	// DownloadContents reports a file missing from an existing directory
	// with a plain error.
	if strings.HasPrefix(err.Error(), "no file named") {
		return fmt.Errorf("template %s: %w", where, domain.ErrNotFound)
	}
	return fmt.Errorf("%w: download %s: %w", domain.ErrFetchFailure, where, err)
}
