package planner

import (
	"github.com/resellkit/research-core/internal/model"
)

// Scoring weights. Cost dominates per dollar so cheap tools are tried
// before expensive ones; context boosts reward tools that can exploit
// what is already known about the item.
const (
	exactFieldBonus      = 20.0
	costWeight           = 50.0
	barcodeBoost         = 50.0
	visionBoost          = 25.0
	targetedSearchBoost  = 30.0
	attemptPenalty       = 10.0
	visionBoostMinImages = 2
)

// candidate is one scored (tool, field) pairing.
type candidate struct {
	tool  model.Tool
	field string
	score float64
}

// bestCandidate scores every eligible tool against every researchable
// field and returns the winner. Ties break on score, then tool priority,
// then tool ID, then field name, so selection never depends on catalog or
// map order.
func (p *Planner) bestCandidate(in Input, remaining float64) (candidate, bool) {
	var fields []*model.FieldState
	for _, name := range in.States.SortedNames() {
		if f := in.States.Fields[name]; p.researchable(f) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return candidate{}, false
	}

	var best candidate
	found := false
	for _, tool := range in.Catalog {
		if !p.eligible(tool, in, remaining) {
			continue
		}
		for _, f := range fields {
			if !tool.CanProduce(f.Name) {
				continue
			}
			c := candidate{tool: tool, field: f.Name, score: scorePair(tool, f, in.Context)}
			if !found || c.beats(best) {
				best = c
				found = true
			}
		}
	}
	return best, found
}

// scorePair ranks invoking one tool for one field.
func scorePair(tool model.Tool, f *model.FieldState, rc model.ResearchContext) float64 {
	score := tool.Priority
	if tool.DeclaresExact(f.Name) {
		score += exactFieldBonus
	}
	score -= costWeight * tool.CostUsd

	if rc.HasBarcode && tool.RequiresKey(model.RequireBarcode) {
		score += barcodeBoost
	}
	if rc.ImageCount >= visionBoostMinImages && tool.RequiresKey(model.RequireImages) {
		score += visionBoost
	}
	if rc.HasBrand && rc.HasModel && tool.RequiresKey(model.RequireBrandModel) {
		score += targetedSearchBoost
	}

	score -= attemptPenalty * float64(f.Attempts)
	return score
}

// beats is the strict total order used for winner selection.
func (c candidate) beats(o candidate) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	if c.tool.Priority != o.tool.Priority {
		return c.tool.Priority > o.tool.Priority
	}
	if c.tool.ID != o.tool.ID {
		return c.tool.ID < o.tool.ID
	}
	return c.field < o.field
}

// targetFields lists what the winning tool should research: the winning
// field first, then every other researchable field the tool can produce,
// in lexical order. One invocation fills as much as it can.
func (p *Planner) targetFields(in Input, best candidate) []string {
	targets := []string{best.field}
	for _, name := range in.States.SortedNames() {
		if name == best.field {
			continue
		}
		f := in.States.Fields[name]
		if p.researchable(f) && best.tool.CanProduce(name) {
			targets = append(targets, name)
		}
	}
	return targets
}
