// Package proposal provides the stages of the batch proposal render.
package proposal

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Stage names.
const (
	StageKeywords     = "search_keywords"
	StageExecSummary  = "executive_summary"
	StageProjectSteps = "project_steps"
	StageCases        = "project_cases"
	StageValidation   = "data_validation"
	StageTestimonials = "testimonials"
)

// Retrieval defaults.
const (
	DefaultCasesCollection        = "project_cases"
	DefaultCasesK                 = 3
	DefaultTestimonialsCollection = "testimonials"
	DefaultTestimonialsK          = 2
)

// KeywordsStage extracts the search keywords later stages query with.
type KeywordsStage struct {
	extractor driven.ExtractionService
}

// NewKeywordsStage creates a keywords stage.
func NewKeywordsStage(extractor driven.ExtractionService) *KeywordsStage {
	return &KeywordsStage{extractor: extractor}
}

// Name returns the stage name.
func (s *KeywordsStage) Name() string { return StageKeywords }

// Apply stores the keywords joined with ", ".
func (s *KeywordsStage) Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	var resp struct {
		Keywords []string `json:"keywords"`
	}
	if err := s.extractor.Extract(ctx, StageKeywords, &resp); err != nil {
		return p, err
	}
	if len(resp.Keywords) == 0 {
		return p, fmt.Errorf("no search keywords extracted: %w", domain.ErrServiceFailure)
	}
	p.Keywords = strings.Join(resp.Keywords, ", ")
	return p, nil
}

// ExecSummaryStage extracts client and project framing.
type ExecSummaryStage struct {
	extractor driven.ExtractionService
}

// NewExecSummaryStage creates an executive summary stage.
func NewExecSummaryStage(extractor driven.ExtractionService) *ExecSummaryStage {
	return &ExecSummaryStage{extractor: extractor}
}

// Name returns the stage name.
func (s *ExecSummaryStage) Name() string { return StageExecSummary }

// Apply fills the client, tagline, problem and solution.
func (s *ExecSummaryStage) Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	var resp struct {
		Company          string `json:"company"`
		ProjectTagline   string `json:"project_tagline"`
		ProblemStatement string `json:"problem_statement"`
		ProposedSolution string `json:"proposed_solution"`
	}
	if err := s.extractor.Extract(ctx, StageExecSummary, &resp); err != nil {
		return p, err
	}
	p.Client = resp.Company
	p.ProjectTagline = resp.ProjectTagline
	p.ProblemStatement = resp.ProblemStatement
	p.ProposedSolution = resp.ProposedSolution
	return p, nil
}

// ProjectStepsStage extracts the project plan and hourly rate.
type ProjectStepsStage struct {
	extractor driven.ExtractionService
}

// NewProjectStepsStage creates a project steps stage.
func NewProjectStepsStage(extractor driven.ExtractionService) *ProjectStepsStage {
	return &ProjectStepsStage{extractor: extractor}
}

// Name returns the stage name.
func (s *ProjectStepsStage) Name() string { return StageProjectSteps }

// Apply stores the steps. A missing or zero rate leaves costs blank.
func (s *ProjectStepsStage) Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	var resp struct {
		ProjectSteps []domain.ProjectStep `json:"project_steps"`
		HourlyRate   float64              `json:"hourly_rate"`
	}
	if err := s.extractor.Extract(ctx, StageProjectSteps, &resp); err != nil {
		return p, err
	}
	p.Steps = resp.ProjectSteps
	p.HourlyRate = resp.HourlyRate
	return p, nil
}

// CasesStage retrieves reference projects matching the keywords.
type CasesStage struct {
	extractor  driven.ExtractionService
	collection string
	k          int
}

// NewCasesStage creates a reference cases stage.
func NewCasesStage(extractor driven.ExtractionService, collection string, k int) *CasesStage {
	if collection == "" {
		collection = DefaultCasesCollection
	}
	if k <= 0 {
		k = DefaultCasesK
	}
	return &CasesStage{extractor: extractor, collection: collection, k: k}
}

// Name returns the stage name.
func (s *CasesStage) Name() string { return StageCases }

// Apply stores up to k reference cases.
func (s *CasesStage) Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	var resp []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := s.extractor.Retrieve(ctx, p.Keywords, s.collection, s.k, &resp); err != nil {
		return p, err
	}
	p.Cases = nil
	for i, c := range resp {
		if i == s.k {
			break
		}
		p.Cases = append(p.Cases, domain.NewReferenceCase(c.Title, c.Description))
	}
	return p, nil
}

// ValidationStage records the data validation rows.
type ValidationStage struct{}

// Name returns the stage name.
func (ValidationStage) Name() string { return StageValidation }

// Apply validates the content accumulated so far.
func (ValidationStage) Apply(_ context.Context, p domain.Proposal) (domain.Proposal, error) {
	p.Validation = p.Validate()
	return p, nil
}

// TestimonialsStage retrieves client testimonials matching the keywords.
type TestimonialsStage struct {
	extractor  driven.ExtractionService
	collection string
	k          int
}

// NewTestimonialsStage creates a testimonials stage.
func NewTestimonialsStage(extractor driven.ExtractionService, collection string, k int) *TestimonialsStage {
	if collection == "" {
		collection = DefaultTestimonialsCollection
	}
	if k <= 0 {
		k = DefaultTestimonialsK
	}
	return &TestimonialsStage{extractor: extractor, collection: collection, k: k}
}

// Name returns the stage name.
func (s *TestimonialsStage) Name() string { return StageTestimonials }

// Apply stores up to k testimonials.
func (s *TestimonialsStage) Apply(ctx context.Context, p domain.Proposal) (domain.Proposal, error) {
	var resp []struct {
		Testimonial string `json:"testimonial"`
		Contact     string `json:"contact"`
		Company     string `json:"company"`
		Portrait    string `json:"portrait"`
	}
	if err := s.extractor.Retrieve(ctx, p.Keywords, s.collection, s.k, &resp); err != nil {
		return p, err
	}
	p.Testimonials = nil
	for i, t := range resp {
		if i == s.k {
			break
		}
		p.Testimonials = append(p.Testimonials, domain.Testimonial{
			Quote:    t.Testimonial,
			Contact:  t.Contact,
			Company:  t.Company,
			Portrait: t.Portrait,
		})
	}
	return p, nil
}
