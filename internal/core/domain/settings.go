package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// TemplateBackend selects where document templates are loaded from.
type TemplateBackend string

// Available template backends.
const (
	// TemplateBackendFile reads templates from a local directory.
	TemplateBackendFile TemplateBackend = "file"

	// TemplateBackendHTTP fetches templates from <base_url>/templates/<name>.
	TemplateBackendHTTP TemplateBackend = "http"

	// TemplateBackendDrive reads templates from a Google Drive folder.
	TemplateBackendDrive TemplateBackend = "drive"

	// TemplateBackendGitHub reads templates from a GitHub repository path.
	TemplateBackendGitHub TemplateBackend = "github"
)

// IsValid returns true if the backend is recognised.
func (b TemplateBackend) IsValid() bool {
	switch b {
	case TemplateBackendFile, TemplateBackendHTTP, TemplateBackendDrive, TemplateBackendGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b TemplateBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b TemplateBackend) Description() string {
	switch b {
	case TemplateBackendFile:
		return "Local directory"
	case TemplateBackendHTTP:
		return "HTTP server"
	case TemplateBackendDrive:
		return "Google Drive folder"
	case TemplateBackendGitHub:
		return "GitHub repository"
	default:
		return unknownDescription
	}
}

// AllTemplateBackends returns all template backends.
func AllTemplateBackends() []TemplateBackend {
	return []TemplateBackend{
		TemplateBackendFile,
		TemplateBackendHTTP,
		TemplateBackendDrive,
		TemplateBackendGitHub,
	}
}

// RetrievalSettings configures the content retrieval backend.
type RetrievalSettings struct {
	BaseURL string
	Timeout time.Duration
}

// ConversionSettings configures the document-to-PDF conversion service.
type ConversionSettings struct {
	BaseURL string

	// Secret authenticates against the conversion service.
	Secret string

	// RequestsPerSecond throttles outgoing conversions.
	RequestsPerSecond float64

	// Burst is the rate limiter burst size.
	Burst int
}

// IsConfigured returns true if conversions can be submitted.
func (c ConversionSettings) IsConfigured() bool {
	return c.BaseURL != "" && c.Secret != ""
}

// TemplateSettings configures the template store.
type TemplateSettings struct {
	Backend TemplateBackend

	// Dir is the template directory for the file backend.
	Dir string

	// BaseURL is the server for the http backend.
	BaseURL string

	// DriveFolderID and DriveAPIKey configure the drive backend.
	DriveFolderID string
	DriveAPIKey   string

	// GitHubRepo is "owner/repo"; GitHubPath and GitHubRef locate templates.
	GitHubRepo  string
	GitHubPath  string
	GitHubRef   string
	GitHubToken string
}

// GenerationSettings configures "generate all".
type GenerationSettings struct {
	// Concurrency bounds simultaneous render/convert pipelines.
	Concurrency int

	// MaxCombinations rejects documents with more combinations. Zero disables.
	MaxCombinations int

	// Keep is the number of generations retained in the artifact store.
	Keep int

	// PruneInterval is how often old generations are pruned.
	PruneInterval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Retrieval  RetrievalSettings
	Conversion ConversionSettings
	Templates  TemplateSettings
	Generation GenerationSettings

	// OutputDir receives downloaded artifacts.
	OutputDir string

	// Classifier resolves tag kinds.
	Classifier TagClassifier
}

// Generation concurrency bounds.
const (
	MinConcurrency     = 1
	MaxConcurrency     = 16
	DefaultConcurrency = 4
)

// DefaultAppSettings returns settings with sensible defaults.
// The conversion secret is left unset; conversions are skipped until it is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			BaseURL: "http://localhost:8000",
			Timeout: 5 * time.Minute,
		},
		Conversion: ConversionSettings{
			BaseURL:           "https://v2.convertapi.com",
			RequestsPerSecond: 2,
			Burst:             DefaultConcurrency,
		},
		Templates: TemplateSettings{
			Backend:   TemplateBackendFile,
			Dir:       "templates",
			GitHubRef: "main",
		},
		Generation: GenerationSettings{
			Concurrency:     DefaultConcurrency,
			MaxCombinations: 1024,
			Keep:            10,
			PruneInterval:   time.Hour,
		},
		OutputDir:  ".",
		Classifier: DefaultTagClassifier(),
	}
}

// ClampConcurrency bounds a concurrency value to the supported range.
func ClampConcurrency(n int) int {
	switch {
	case n < MinConcurrency:
		return MinConcurrency
	case n > MaxConcurrency:
		return MaxConcurrency
	default:
		return n
	}
}

// Validate checks the settings can drive the application.
func (s AppSettings) Validate() error {
	if s.Retrieval.BaseURL == "" {
		return fmt.Errorf("retrieval.base_url is required: %w", ErrInvalidInput)
	}
	if !s.Templates.Backend.IsValid() {
		return fmt.Errorf("templates.backend %q: %w", s.Templates.Backend, ErrInvalidInput)
	}
	switch s.Templates.Backend {
	case TemplateBackendHTTP:
		if s.Templates.BaseURL == "" {
			return fmt.Errorf("templates.base_url is required for the http backend: %w", ErrInvalidInput)
		}
	case TemplateBackendDrive:
		if s.Templates.DriveFolderID == "" {
			return fmt.Errorf("templates.drive_folder_id is required for the drive backend: %w", ErrInvalidInput)
		}
	case TemplateBackendGitHub:
		if s.Templates.GitHubRepo == "" {
			return fmt.Errorf("templates.github_repo is required for the github backend: %w", ErrInvalidInput)
		}
	}
	if s.Generation.MaxCombinations < 0 {
		return fmt.Errorf("generation.max_combinations must not be negative: %w", ErrInvalidInput)
	}
	return nil
}
