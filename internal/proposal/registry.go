package proposal

import (
	"fmt"

	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// BuilderFunc creates a ProposalStage from generic config.
// Config is a map of stage-specific settings parsed from user config.
type BuilderFunc func(extractor driven.ExtractionService, cfg map[string]any) (driven.ProposalStage, error)

// Registry maps stage names to their builders.
// It allows the stage list to be assembled from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new stage registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a stage builder to the registry.
// Name should match the stage's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a stage by name with the given config.
func (r *Registry) Build(name string, extractor driven.ExtractionService, cfg map[string]any) (driven.ProposalStage, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown proposal stage: %s", name)
	}
	return builder(extractor, cfg)
}

// BuildAll creates the named stages in order. cfgs is keyed by stage name.
func (r *Registry) BuildAll(
	names []string,
	extractor driven.ExtractionService,
	cfgs map[string]map[string]any,
) ([]driven.ProposalStage, error) {
	stages := make([]driven.ProposalStage, 0, len(names))
	for _, name := range names {
		stage, err := r.Build(name, extractor, cfgs[name])
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// Has returns true if a stage with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}
