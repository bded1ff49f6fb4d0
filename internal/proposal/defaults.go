package proposal

import (
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// DefaultStageNames returns the built-in stage order. Validation runs before
// testimonials, which it does not cover.
func DefaultStageNames() []string {
	return []string{
		StageKeywords,
		StageExecSummary,
		StageProjectSteps,
		StageCases,
		StageValidation,
		StageTestimonials,
	}
}

// RegisterDefaults registers all built-in stages with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(StageKeywords, func(ext driven.ExtractionService, _ map[string]any) (driven.ProposalStage, error) {
		return NewKeywordsStage(ext), nil
	})
	r.Register(StageExecSummary, func(ext driven.ExtractionService, _ map[string]any) (driven.ProposalStage, error) {
		return NewExecSummaryStage(ext), nil
	})
	r.Register(StageProjectSteps, func(ext driven.ExtractionService, _ map[string]any) (driven.ProposalStage, error) {
		return NewProjectStepsStage(ext), nil
	})
	r.Register(StageCases, func(ext driven.ExtractionService, cfg map[string]any) (driven.ProposalStage, error) {
		return NewCasesStage(ext, getStringFromConfig(cfg, "collection"), getIntFromConfig(cfg, "k")), nil
	})
	r.Register(StageValidation, func(driven.ExtractionService, map[string]any) (driven.ProposalStage, error) {
		return ValidationStage{}, nil
	})
	r.Register(StageTestimonials, func(ext driven.ExtractionService, cfg map[string]any) (driven.ProposalStage, error) {
		return NewTestimonialsStage(ext, getStringFromConfig(cfg, "collection"), getIntFromConfig(cfg, "k")), nil
	})
}

// DefaultStages builds the built-in pipeline with default settings.
func DefaultStages(extractor driven.ExtractionService) []driven.ProposalStage {
	r := NewRegistry()
	RegisterDefaults(r)
	stages, _ := r.BuildAll(DefaultStageNames(), extractor, nil)
	return stages
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getStringFromConfig(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}
