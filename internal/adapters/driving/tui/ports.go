// Package tui provides an interactive terminal user interface for reportgen.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Content retrieves report contents.
	Content driving.ContentService

	// Generation renders every page combination.
	Generation driving.GenerationService

	// Document renders the full report for download.
	Document driving.DocumentService

	// Proposal runs the batch proposal. Optional.
	Proposal driving.ProposalService

	// Settings provides the output directory. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Content == nil {
		return ErrMissingContentService
	}
	if p.Generation == nil {
		return ErrMissingGenerationService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}

// outputDir returns the configured output directory, or "." when unset.
func (p *Ports) outputDir() string {
	if p.Settings != nil {
		if settings, err := p.Settings.Get(); err == nil && settings.OutputDir != "" {
			return settings.OutputDir
		}
	}
	return "."
}
