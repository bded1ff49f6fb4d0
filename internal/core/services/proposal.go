package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure ProposalService implements the interface.
var _ driving.ProposalService = (*ProposalService)(nil)

var proposalLog = logger.For("proposal")

// ProposalService chains the proposal stages over one accumulator and renders
// the result into the proposal template.
type ProposalService struct {
	stages    []driven.ProposalStage
	templates driven.TemplateStore
	renderer  driven.DocumentRenderer
}

// NewProposalService creates a proposal service running stages in order.
func NewProposalService(
	stages []driven.ProposalStage,
	templates driven.TemplateStore,
	renderer driven.DocumentRenderer,
) *ProposalService {
	return &ProposalService{
		stages:    stages,
		templates: templates,
		renderer:  renderer,
	}
}

// Build runs every stage, stopping at the first failure, then renders.
func (s *ProposalService) Build(ctx context.Context) (*domain.Proposal, []byte, error) {
	logger.Section("Proposal")

	var p domain.Proposal
	for i, stage := range s.stages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		proposalLog.Info("stage %d/%d: %s", i+1, len(s.stages), stage.Name())
		next, err := stage.Apply(ctx, p)
		if err != nil {
			return nil, nil, fmt.Errorf("proposal stage %s: %w", stage.Name(), asServiceFailure(err))
		}
		p = next
	}

	name := domain.ProposalTemplateName()
	tmpl, err := s.templates.Template(ctx, name)
	if err != nil {
		return &p, nil, asFetchFailure("fetch template "+name, err)
	}
	rendered, err := s.renderer.Render(tmpl, p.TemplateData())
	if err != nil {
		return &p, nil, asRenderFailure("render "+name, err)
	}

	proposalLog.Info("rendered %s for %q (%d bytes)", name, p.Client, len(rendered))
	return &p, rendered, nil
}
