package driving

import (
	"context"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// Progress reports generation progress. Completed includes failed combinations.
type Progress struct {
	GenerationID string
	Completed    int
	Failed       int
	Total        int
}

// Fraction returns completed/total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// GenerationResult is the outcome of one generation cycle.
type GenerationResult struct {
	Generation domain.Generation

	// Artifacts holds one entry per successful combination.
	Artifacts *domain.ArtifactMap

	// Failures lists combinations that failed; their keys are absent from Artifacts.
	Failures []*domain.CombinationError
}

// GenerationService renders every page combination of a document.
type GenerationService interface {
	// Generate starts a new cycle, cancelling any cycle still running.
	// Failed combinations are reported in the result and do not stop the
	// batch. onProgress is called after each combination finishes with
	// monotonically non-decreasing counts.
	Generate(ctx context.Context, doc *domain.DocumentContents, onProgress func(Progress)) (*GenerationResult, error)

	// Cancel abandons the running cycle, if any.
	Cancel()

	// Current returns the artifacts of the newest completed cycle.
	Current() *domain.ArtifactMap

	// Lookup returns the artifact for the page under the given selection.
	// It returns domain.ErrNotFound when the newest artifacts were rendered
	// from different contents.
	Lookup(doc *domain.DocumentContents, pageNumber int, sel domain.Selection) (*domain.Artifact, error)
}

// DocumentService renders the full report document.
type DocumentService interface {
	// RenderFull binds every page's selected variation into the full-document
	// template and returns DOCX or PDF bytes.
	RenderFull(ctx context.Context, reportType domain.ReportType, doc *domain.DocumentContents,
		sel domain.Selection, format domain.Format) ([]byte, error)

	// Open opens a downloaded file in the default application.
	Open(path string) error
}

// ProposalService runs the batch proposal render.
type ProposalService interface {
	// Build runs every proposal stage and renders the proposal template.
	// Returns the accumulated content and the rendered PPTX.
	Build(ctx context.Context) (*domain.Proposal, []byte, error)
}
