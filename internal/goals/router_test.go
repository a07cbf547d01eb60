package goals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/model"
)

var routeNow = time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

func TestDefaultGoals(t *testing.T) {
	goals := DefaultGoals(0.85)
	require.Len(t, goals, 4)

	identify := goals.ByType(model.GoalIdentifyProduct)
	require.NotNil(t, identify)
	assert.Equal(t, "identify_product", identify.ID)
	assert.Empty(t, identify.Dependencies)
	assert.Equal(t, model.GoalPending, identify.Status)

	meta := goals.ByType(model.GoalGatherMetadata)
	assert.Equal(t, []model.GoalType{model.GoalIdentifyProduct}, meta.Dependencies)

	assembly := goals.ByType(model.GoalAssembleListing)
	assert.ElementsMatch(t,
		[]model.GoalType{model.GoalGatherMetadata, model.GoalResearchMarket},
		assembly.Dependencies)

	// Out-of-range confidence falls back to the default bar.
	fallback := DefaultGoals(0)
	assert.InDelta(t, DefaultRequiredConfidence, fallback.ByType(model.GoalIdentifyProduct).RequiredConfidence, 1e-9)
}

func TestRoute_IdentificationFirst(t *testing.T) {
	goals := DefaultGoals(0.85)

	d := Route(goals, 0.0, routeNow)
	assert.Equal(t, PhaseIdentification, d.Phase)
	assert.Equal(t, ActionResearchIdentity, d.Action)
	assert.Equal(t, model.GoalIdentifyProduct, d.Goal)
	assert.Equal(t, model.GoalInProgress, goals.ByType(model.GoalIdentifyProduct).Status)
}

func TestRoute_IdentificationCompletesAtBar(t *testing.T) {
	goals := DefaultGoals(0.85)

	d := Route(goals, 0.91, routeNow)
	identify := goals.ByType(model.GoalIdentifyProduct)
	assert.Equal(t, model.GoalCompleted, identify.Status)
	assert.InDelta(t, 0.91, identify.Confidence, 1e-9)
	require.NotNil(t, identify.CompletedAt)

	// Same call falls through to the parallel phase, metadata first.
	assert.Equal(t, PhaseParallel, d.Phase)
	assert.Equal(t, ActionExecuteGoal, d.Action)
	assert.Equal(t, model.GoalGatherMetadata, d.Goal)
	assert.Equal(t, model.GoalInProgress, goals.ByType(model.GoalGatherMetadata).Status)
}

func TestRoute_IdentificationForceCompletesWhenSpent(t *testing.T) {
	goals := DefaultGoals(0.85)
	identify := goals.ByType(model.GoalIdentifyProduct)
	identify.Status = model.GoalInProgress
	identify.Attempts = identify.MaxAttempts

	d := Route(goals, 0.40, routeNow)
	assert.Equal(t, model.GoalCompleted, identify.Status)
	assert.InDelta(t, 0.40, identify.Confidence, 1e-9, "completes at whatever confidence it reached")
	assert.Equal(t, PhaseParallel, d.Phase)
}

func TestRoute_ParallelAlternation(t *testing.T) {
	goals := DefaultGoals(0.85)
	goals.ByType(model.GoalIdentifyProduct).Complete(0.9, routeNow)

	meta := goals.ByType(model.GoalGatherMetadata)
	market := goals.ByType(model.GoalResearchMarket)

	// Tie: metadata is prioritized.
	d := Route(goals, 0.9, routeNow)
	assert.Equal(t, model.GoalGatherMetadata, d.Goal)

	// Runner dispatched metadata once; market now has fewer attempts.
	meta.Attempts = 1
	d = Route(goals, 0.9, routeNow)
	assert.Equal(t, model.GoalResearchMarket, d.Goal)

	market.Attempts = 1
	d = Route(goals, 0.9, routeNow)
	assert.Equal(t, model.GoalGatherMetadata, d.Goal)
}

func TestRoute_ParallelSkipsSettledGoal(t *testing.T) {
	goals := DefaultGoals(0.85)
	goals.ByType(model.GoalIdentifyProduct).Complete(0.9, routeNow)
	goals.ByType(model.GoalGatherMetadata).Complete(0.8, routeNow)

	d := Route(goals, 0.9, routeNow)
	assert.Equal(t, PhaseParallel, d.Phase)
	assert.Equal(t, model.GoalResearchMarket, d.Goal)
}

func TestRoute_DeadlockForcesAssembly(t *testing.T) {
	goals := DefaultGoals(0.85)
	goals.ByType(model.GoalIdentifyProduct).Complete(0.9, routeNow)

	meta := goals.ByType(model.GoalGatherMetadata)
	market := goals.ByType(model.GoalResearchMarket)
	meta.Status = model.GoalInProgress
	meta.Attempts = meta.MaxAttempts
	market.Status = model.GoalInProgress
	market.Attempts = market.MaxAttempts

	d := Route(goals, 0.9, routeNow)
	assert.Equal(t, PhaseAssembly, d.Phase)
	assert.Equal(t, model.GoalAssembleListing, d.Goal)
	assert.True(t, d.Forced)
}

func TestRoute_DeadlockWithOneWedgedGoal(t *testing.T) {
	goals := DefaultGoals(0.85)
	goals.ByType(model.GoalIdentifyProduct).Complete(0.9, routeNow)
	goals.ByType(model.GoalResearchMarket).Complete(0.75, routeNow)

	meta := goals.ByType(model.GoalGatherMetadata)
	meta.Status = model.GoalInProgress
	meta.Attempts = meta.MaxAttempts

	d := Route(goals, 0.9, routeNow)
	assert.True(t, d.Forced, "one wedged goal is enough to block assembly forever")
	assert.Equal(t, PhaseAssembly, d.Phase)
}

func TestRoute_EmptyGoalListForcesAssembly(t *testing.T) {
	d := Route(model.GoalList{}, 0.9, routeNow)
	assert.Equal(t, PhaseAssembly, d.Phase)
	assert.Equal(t, ActionExecuteGoal, d.Action)
	assert.Equal(t, model.GoalAssembleListing, d.Goal)
	assert.True(t, d.Forced)
}

func TestRoute_AssemblyThenPersist(t *testing.T) {
	goals := DefaultGoals(0.85)
	goals.ByType(model.GoalIdentifyProduct).Complete(0.9, routeNow)
	goals.ByType(model.GoalGatherMetadata).Complete(0.8, routeNow)
	goals.ByType(model.GoalResearchMarket).Complete(0.75, routeNow)

	d := Route(goals, 0.9, routeNow)
	assert.Equal(t, PhaseAssembly, d.Phase)
	assert.Equal(t, ActionExecuteGoal, d.Action)
	assert.Equal(t, model.GoalAssembleListing, d.Goal)
	assert.False(t, d.Forced)
	assert.Equal(t, model.GoalInProgress, goals.ByType(model.GoalAssembleListing).Status)

	goals.ByType(model.GoalAssembleListing).Complete(0.85, routeNow)
	d = Route(goals, 0.9, routeNow)
	assert.Equal(t, PhaseDone, d.Phase)
	assert.Equal(t, ActionPersist, d.Action)
}

func TestRoute_IsDeterministic(t *testing.T) {
	run := func() []Directive {
		goals := DefaultGoals(0.85)
		var out []Directive
		out = append(out, Route(goals, 0.2, routeNow))
		goals.ByType(model.GoalIdentifyProduct).Attempts = 3
		out = append(out, Route(goals, 0.5, routeNow))
		goals.ByType(model.GoalGatherMetadata).Complete(0.8, routeNow)
		goals.ByType(model.GoalResearchMarket).Complete(0.6, routeNow)
		out = append(out, Route(goals, 0.5, routeNow))
		return out
	}

	assert.Equal(t, run(), run())
}
