package model

import "time"

// GoalType names one of the four macro research goals.
type GoalType string

const (
	GoalIdentifyProduct GoalType = "IDENTIFY_PRODUCT"
	GoalGatherMetadata  GoalType = "GATHER_METADATA"
	GoalResearchMarket  GoalType = "RESEARCH_MARKET"
	GoalAssembleListing GoalType = "ASSEMBLE_LISTING"
)

// GoalStatus is the lifecycle state of a macro goal.
type GoalStatus string

const (
	GoalPending    GoalStatus = "pending"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalFailed     GoalStatus = "failed"
)

// ResearchGoal is one macro objective of a research session. Goals carry
// their own confidence, separate from per-field confidence: a goal can
// complete at low confidence when its phase ran out of road.
type ResearchGoal struct {
	ID                 string     `json:"id"`
	Type               GoalType   `json:"type"`
	Status             GoalStatus `json:"status"`
	Confidence         float64    `json:"confidence"`
	RequiredConfidence float64    `json:"required_confidence"`
	Dependencies       []GoalType `json:"dependencies,omitempty"`
	Attempts           int        `json:"attempts"`
	MaxAttempts        int        `json:"max_attempts"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Complete marks the goal completed with the given confidence.
func (g *ResearchGoal) Complete(confidence float64, at time.Time) {
	g.Status = GoalCompleted
	g.Confidence = clamp01(confidence)
	t := at
	g.CompletedAt = &t
}

// Done reports whether the goal needs no further work.
func (g *ResearchGoal) Done() bool {
	return g.Status == GoalCompleted || g.Status == GoalFailed
}

// GoalList is the ordered goal set of one research session.
type GoalList []*ResearchGoal

// ByType returns the goal of the given type, or nil.
func (l GoalList) ByType(t GoalType) *ResearchGoal {
	for _, g := range l {
		if g.Type == t {
			return g
		}
	}
	return nil
}

// Completed reports whether the goal of the given type exists and is completed.
func (l GoalList) Completed(t GoalType) bool {
	g := l.ByType(t)
	return g != nil && g.Status == GoalCompleted
}

// DependenciesMet reports whether every dependency of g is completed.
// Goals with no dependencies are always eligible.
func (l GoalList) DependenciesMet(g *ResearchGoal) bool {
	for _, dep := range g.Dependencies {
		if !l.Completed(dep) {
			return false
		}
	}
	return true
}

// Snapshot returns a by-value copy of the goal list for persistence.
func (l GoalList) Snapshot() []ResearchGoal {
	out := make([]ResearchGoal, 0, len(l))
	for _, g := range l {
		out = append(out, *g)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
