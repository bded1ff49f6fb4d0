// Package templates selects the template store for the configured backend.
package templates

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/templates/drive"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/templates/file"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/templates/github"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/templates/remote"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

var templatesLog = logger.For("templates")

// New creates the template store for cfg.Backend. A file store watches its
// directory until ctx is cancelled.
func New(ctx context.Context, cfg domain.TemplateSettings) (driven.TemplateStore, error) {
	switch cfg.Backend {
	case domain.TemplateBackendFile, "":
		s := file.New(cfg.Dir)
		if err := s.Watch(ctx); err != nil {
			templatesLog.Warn("templates will not be cached: %v", err)
		}
		return s, nil
	case domain.TemplateBackendHTTP:
		return remote.New(remote.Config{BaseURL: cfg.BaseURL})
	case domain.TemplateBackendDrive:
		return drive.New(ctx, drive.Config{FolderID: cfg.DriveFolderID, APIKey: cfg.DriveAPIKey})
	case domain.TemplateBackendGitHub:
		return github.New(ctx, github.Config{
			Repo:  cfg.GitHubRepo,
			Path:  cfg.GitHubPath,
			Ref:   cfg.GitHubRef,
			Token: cfg.GitHubToken,
		})
	default:
		return nil, fmt.Errorf("templates.backend %q: %w", cfg.Backend, domain.ErrInvalidInput)
	}
}
