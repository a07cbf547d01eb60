// Package goals drives the macro phases of a research session: identify
// the product, gather metadata and market data in parallel, assemble the
// listing. Pure Go: the runner owns all side effects.
package goals

import (
	"strings"

	"github.com/resellkit/research-core/internal/model"
)

// DefaultRequiredConfidence gates identification completion.
const DefaultRequiredConfidence = 0.85

// Default per-goal dispatch budgets. Identification gets few, focused
// attempts; the parallel goals get room to alternate; assembly is a
// single deterministic construction.
const (
	defaultIdentifyAttempts = 3
	defaultParallelAttempts = 6
	defaultAssemblyAttempts = 1
)

// DefaultGoals builds the canonical goal set for one session. Goal IDs are
// fixed so identical sessions produce identical goal sets.
func DefaultGoals(requiredConfidence float64) model.GoalList {
	if requiredConfidence <= 0 || requiredConfidence > 1 {
		requiredConfidence = DefaultRequiredConfidence
	}
	return model.GoalList{
		newGoal(model.GoalIdentifyProduct, requiredConfidence, defaultIdentifyAttempts),
		newGoal(model.GoalGatherMetadata, requiredConfidence, defaultParallelAttempts,
			model.GoalIdentifyProduct),
		newGoal(model.GoalResearchMarket, requiredConfidence, defaultParallelAttempts,
			model.GoalIdentifyProduct),
		newGoal(model.GoalAssembleListing, requiredConfidence, defaultAssemblyAttempts,
			model.GoalGatherMetadata, model.GoalResearchMarket),
	}
}

func newGoal(t model.GoalType, required float64, maxAttempts int, deps ...model.GoalType) *model.ResearchGoal {
	return &model.ResearchGoal{
		ID:                 strings.ToLower(string(t)),
		Type:               t,
		Status:             model.GoalPending,
		RequiredConfidence: required,
		Dependencies:       deps,
		MaxAttempts:        maxAttempts,
	}
}
