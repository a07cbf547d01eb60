package goals

import (
	"time"

	"github.com/resellkit/research-core/internal/model"
)

// Phase is the macro phase of a research session.
type Phase string

const (
	PhaseIdentification Phase = "identification"
	PhaseParallel       Phase = "parallel"
	PhaseAssembly       Phase = "assembly"
	PhaseDone           Phase = "done"
)

// Action tells the runner what kind of step to take next.
type Action string

const (
	// ActionResearchIdentity keeps working identification fields.
	ActionResearchIdentity Action = "research_identity"
	// ActionExecuteGoal advances the named goal.
	ActionExecuteGoal Action = "execute_goal"
	// ActionPersist ends the session: write results and stop.
	ActionPersist Action = "persist"
)

// Directive is one routing decision.
type Directive struct {
	Phase  Phase          `json:"phase"`
	Action Action         `json:"action"`
	Goal   model.GoalType `json:"goal,omitempty"`
	Forced bool           `json:"forced,omitempty"`
}

// Route inspects goal state and decides the current phase and next step.
//
// Identification runs first and alone: nothing downstream is trustworthy
// until the item is known. It completes when identification confidence
// reaches the goal's bar, or force-completes when its attempts are spent.
// Metadata and market research then alternate, least-dispatched first with
// metadata winning ties. When both are stuck in progress with attempts
// exhausted, the deadlock breaks by forcing assembly. Assembly runs once;
// after it the only step left is to persist.
//
// Route mutates goal state in two places: it completes the identification
// goal, and it marks a goal in_progress when dispatching it. Every other
// status change belongs to the completion scorers.
func Route(goals model.GoalList, identificationConfidence float64, now time.Time) Directive {
	identify := goals.ByType(model.GoalIdentifyProduct)
	if identify != nil && !identify.Done() {
		if identificationConfidence >= identify.RequiredConfidence {
			identify.Complete(identificationConfidence, now)
		} else if identify.Attempts >= identify.MaxAttempts {
			// Out of attempts: move on with the item only partly known.
			identify.Complete(identificationConfidence, now)
		} else {
			identify.Status = model.GoalInProgress
			return Directive{
				Phase:  PhaseIdentification,
				Action: ActionResearchIdentity,
				Goal:   model.GoalIdentifyProduct,
			}
		}
	}

	meta := goals.ByType(model.GoalGatherMetadata)
	market := goals.ByType(model.GoalResearchMarket)

	if next := pickParallel(goals, meta, market); next != nil {
		next.Status = model.GoalInProgress
		return Directive{Phase: PhaseParallel, Action: ActionExecuteGoal, Goal: next.Type}
	}

	if deadlocked(meta, market) {
		return Directive{
			Phase:  PhaseAssembly,
			Action: ActionExecuteGoal,
			Goal:   model.GoalAssembleListing,
			Forced: true,
		}
	}

	if bothSettled(meta, market) {
		assembly := goals.ByType(model.GoalAssembleListing)
		if assembly == nil {
			// No assembly record to settle: still route the assembly step,
			// so even an empty goal set gets its best-effort listing pass.
			return Directive{
				Phase:  PhaseAssembly,
				Action: ActionExecuteGoal,
				Goal:   model.GoalAssembleListing,
				Forced: true,
			}
		}
		if !assembly.Done() {
			assembly.Status = model.GoalInProgress
			return Directive{Phase: PhaseAssembly, Action: ActionExecuteGoal, Goal: model.GoalAssembleListing}
		}
	}

	return Directive{Phase: PhaseDone, Action: ActionPersist}
}

// pickParallel chooses the next runnable parallel goal: fewest dispatches
// first, metadata on ties. Goals out of attempts or with unmet
// dependencies are not runnable.
func pickParallel(goals model.GoalList, meta, market *model.ResearchGoal) *model.ResearchGoal {
	runnable := func(g *model.ResearchGoal) bool {
		return g != nil && !g.Done() && g.Attempts < g.MaxAttempts && goals.DependenciesMet(g)
	}

	switch {
	case runnable(meta) && runnable(market):
		if market.Attempts < meta.Attempts {
			return market
		}
		return meta
	case runnable(meta):
		return meta
	case runnable(market):
		return market
	default:
		return nil
	}
}

// deadlocked reports whether either parallel goal is wedged: still in
// progress but out of attempts. Waiting longer cannot help, so the router
// forces the session onward to assembly.
func deadlocked(meta, market *model.ResearchGoal) bool {
	wedged := func(g *model.ResearchGoal) bool {
		return g != nil && g.Status == model.GoalInProgress && g.Attempts >= g.MaxAttempts
	}
	return wedged(meta) || wedged(market)
}

// bothSettled reports whether neither parallel goal has work left. Absent
// goals count as settled so a malformed goal set still advances.
func bothSettled(meta, market *model.ResearchGoal) bool {
	settled := func(g *model.ResearchGoal) bool { return g == nil || g.Done() }
	return settled(meta) && settled(market)
}
