package driven

import (
	"context"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// ProposalStage is one step of the batch proposal pipeline.
// Stages are chained; each receives the accumulator and returns an updated copy.
type ProposalStage interface {
	// Name returns the stage name for logging.
	Name() string

	// Apply runs the stage.
	Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error)
}
