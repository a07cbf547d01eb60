package goals

import (
	"time"

	"github.com/resellkit/research-core/internal/model"
)

// Assembly confidence: a constructed listing scores 0.85, an aborted one
// still completes the goal at 0.50.
const (
	assemblyBuilt   = 0.85
	assemblyAborted = 0.50
)

// IdentificationConfidence measures how well the item is identified: the
// weighted mean cross-validated confidence of identification fields, with
// required fields weighing double. No tracked identification fields means
// zero confidence.
func IdentificationConfidence(states *model.ItemFieldStates) float64 {
	var score, total float64
	for _, f := range states.Fields {
		if f.RequiredBy != model.GoalIdentifyProduct {
			continue
		}
		weight := 1.0
		if f.Required {
			weight = 2.0
		}
		total += weight
		score += weight * f.Confidence.Value
	}
	if total == 0 {
		return 0
	}
	return score / total
}

// CompleteMetadata scores and completes the metadata goal: the fraction of
// tracked metadata fields that reached complete. A category tracking no
// metadata fields completes neutrally at 0.5.
func CompleteMetadata(goals model.GoalList, states *model.ItemFieldStates, now time.Time) float64 {
	g := goals.ByType(model.GoalGatherMetadata)
	if g == nil || g.Done() {
		return 0
	}

	tracked, complete := 0, 0
	for _, f := range states.Fields {
		if f.RequiredBy != model.GoalGatherMetadata {
			continue
		}
		tracked++
		if f.Status == model.FieldComplete {
			complete++
		}
	}

	conf := 0.5
	if tracked > 0 {
		conf = float64(complete) / float64(tracked)
	}
	g.Complete(conf, now)
	return conf
}

// CompleteMarket scores and completes the market goal from the number of
// comparable sold listings found: 10+ comps = 0.90, 5-9 = 0.75, 3-4 =
// 0.60, fewer = 0.30.
func CompleteMarket(goals model.GoalList, comparables int, now time.Time) float64 {
	g := goals.ByType(model.GoalResearchMarket)
	if g == nil || g.Done() {
		return 0
	}

	var conf float64
	switch {
	case comparables >= 10:
		conf = 0.90
	case comparables >= 5:
		conf = 0.75
	case comparables >= 3:
		conf = 0.60
	default:
		conf = 0.30
	}
	g.Complete(conf, now)
	return conf
}

// CompleteAssembly scores and completes the assembly goal.
func CompleteAssembly(goals model.GoalList, assembled bool, now time.Time) float64 {
	g := goals.ByType(model.GoalAssembleListing)
	if g == nil || g.Done() {
		return 0
	}

	conf := assemblyAborted
	if assembled {
		conf = assemblyBuilt
	}
	g.Complete(conf, now)
	return conf
}
