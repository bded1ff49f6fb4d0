// Package drive loads document templates by name from a Google Drive folder.
// Templates may be uploaded Office files or native Docs/Slides, which are
// exported to DOCX/PPTX on download.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TemplateStore = (*Store)(nil)

// Native Google Workspace MIME types and their Office export formats.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"

	ExportMimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ExportMimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// MaxTemplateSize caps a downloaded template (64MB).
const MaxTemplateSize = 64 << 20

// Drive allows 10 requests/sec/user; stay below it.
const (
	requestsPerSecond = 8.0
	burst             = 10
)

// Config configures the store.
type Config struct {
	// FolderID is the Drive folder holding the templates.
	FolderID string

	// APIKey authenticates requests for publicly shared folders.
	APIKey string

	// TokenSource authenticates as a user. When neither APIKey nor
	// TokenSource is set, Application Default Credentials are used.
	TokenSource oauth2.TokenSource

	// Endpoint overrides the API endpoint.
	Endpoint string
}

// Store resolves template names to files in one folder.
type Store struct {
	svc      *drive.Service
	folderID string
	limiter  *rate.Limiter

	mu  sync.Mutex
	ids map[string]driveFile
}

type driveFile struct {
	id       string
	mimeType string
}

// New creates a store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder id is required: %w", domain.ErrInvalidInput)
	}

	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.TokenSource != nil:
		opts = append(opts, option.WithTokenSource(cfg.TokenSource))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Store{
		svc:      svc,
		folderID: cfg.FolderID,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		ids:      make(map[string]driveFile),
	}, nil
}

// Template downloads the named file from the folder.
func (s *Store) Template(ctx context.Context, name string) ([]byte, error) {
	file, err := s.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	switch file.mimeType {
	case MimeTypeGoogleDoc:
		resp, err = s.svc.Files.Export(file.id, ExportMimeDOCX).Context(ctx).Download()
	case MimeTypeGoogleSlides:
		resp, err = s.svc.Files.Export(file.id, ExportMimePPTX).Context(ctx).Download()
	default:
		resp, err = s.svc.Files.Get(file.id).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		s.forget(name)
		return nil, wrapError("download "+name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrFetchFailure, name, err)
	}
	return data, nil
}

// resolve finds the file id of a template, remembering it for later calls.
func (s *Store) resolve(ctx context.Context, name string) (driveFile, error) {
	s.mu.Lock()
	file, ok := s.ids[name]
	s.mu.Unlock()
	if ok {
		return file, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return driveFile{}, err
	}

	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), escapeQuery(s.folderID))
	list, err := s.svc.Files.List().
		Q(query).
		Fields("files(id, name, mimeType)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return driveFile{}, wrapError("find "+name, err)
	}
	if len(list.Files) == 0 {
		return driveFile{}, fmt.Errorf("template %s in drive folder %s: %w", name, s.folderID, domain.ErrNotFound)
	}

	file = driveFile{id: list.Files[0].Id, mimeType: list.Files[0].MimeType}
	s.mu.Lock()
	s.ids[name] = file
	s.mu.Unlock()
	return file, nil
}

func (s *Store) forget(name string) {
	s.mu.Lock()
	delete(s.ids, name)
	s.mu.Unlock()
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// wrapError classifies Google API errors.
func wrapError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w: %s: %w", domain.ErrFetchFailure, domain.ErrRateLimited, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrFetchFailure, op, err)
}
