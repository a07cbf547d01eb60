// Package crossval scores field values by corroboration across independent
// source groups. Agreement between sources that share a failure mode (same
// group) is worth nothing; agreement across groups raises confidence, and
// cross-group disagreement is recorded as a conflict and penalized.
package crossval

import (
	"math"
	"sort"

	"github.com/resellkit/research-core/internal/model"
)

const (
	// maxCrossValidated caps boosted confidence below certainty.
	maxCrossValidated = 0.98

	// Corroboration multiplier: base by independent group count, minus
	// conflict penalties, floored.
	baseSingleGroup = 0.80
	baseTwoGroups   = 1.00
	baseThreePlus   = 1.10
	penaltyMajor    = 0.10
	penaltyMinor    = 0.05
	multiplierFloor = 0.50
)

// groupForSource maps each source type to its independence group. Sources
// in the same group tend to fail together, so they corroborate nothing.
var groupForSource = map[model.SourceType]model.IndependenceGroup{
	model.SourceUPCDatabase:    model.GroupCatalogProvider,
	model.SourceProductCatalog: model.GroupCatalogProvider,
	model.SourceBarcodeScan:    model.GroupCodeLookup,
	model.SourceVisionAnalysis: model.GroupVision,
	model.SourceOCRExtraction:  model.GroupTextExtraction,
	model.SourceWebSearch:      model.GroupWebSearch,
	model.SourceTargetedSearch: model.GroupWebSearch,
	model.SourceEbayAPI:        model.GroupMarketplaceEbay,
	model.SourceAmazonAPI:      model.GroupMarketplaceAmazon,
	model.SourceUserInput:      model.GroupUserInput,
}

// GroupFor returns the independence group of a source type. Unmapped
// source types fall back to the web-search group.
func GroupFor(st model.SourceType) model.IndependenceGroup {
	if g, ok := groupForSource[st]; ok {
		return g
	}
	return model.GroupWebSearch
}

// IndependentGroupCount counts distinct independence groups among the
// concrete observations.
func IndependentGroupCount(sources []model.FieldDataSource) int {
	seen := make(map[model.IndependenceGroup]bool, len(sources))
	for _, s := range sources {
		if !s.Concrete() {
			continue
		}
		seen[GroupFor(s.SourceType)] = true
	}
	return len(seen)
}

// CorroborationMultiplier computes the confidence multiplier for a field.
// Base: 1 group = 0.80, 2 groups = 1.00, 3+ groups = 1.10. Each major
// conflict subtracts 0.10, each minor 0.05. Floor 0.50.
func CorroborationMultiplier(groupCount int, conflicts []model.Conflict) float64 {
	var mult float64
	switch {
	case groupCount >= 3:
		mult = baseThreePlus
	case groupCount == 2:
		mult = baseTwoGroups
	default:
		mult = baseSingleGroup
	}

	for _, c := range conflicts {
		switch c.Severity {
		case model.SeverityMajor:
			mult -= penaltyMajor
		case model.SeverityMinor:
			mult -= penaltyMinor
		}
	}

	if mult < multiplierFloor {
		return multiplierFloor
	}
	return mult
}

// ValidateField cross-validates one field across all of its observations.
// The highest-confidence concrete observation supplies the value and base
// confidence; the final confidence is base times the corroboration
// multiplier, clamped to [0, 1] and capped at 0.98. With no concrete
// observations the value stays nil at zero confidence.
func ValidateField(name string, sources []model.FieldDataSource) model.CrossValidatedField {
	concrete := concreteSources(sources)
	groupCount := IndependentGroupCount(concrete)
	conflicts, pairs := compareSources(name, concrete)

	out := model.CrossValidatedField{
		FieldName:               name,
		IndependentGroupCount:   groupCount,
		AgreementScore:          agreementScore(len(conflicts), pairs),
		CorroborationMultiplier: CorroborationMultiplier(groupCount, conflicts),
		Conflicts:               conflicts,
	}

	if len(concrete) == 0 {
		return out
	}

	winner := pickWinner(concrete)
	out.Value = winner.RawValue
	out.BaseConfidence = winner.Confidence
	out.CrossValidatedConfidence = math.Min(clamp01(winner.Confidence*out.CorroborationMultiplier), maxCrossValidated)
	return out
}

// ValidateAll cross-validates every field in the observation map, sorted
// by field name so the output order never depends on map iteration.
func ValidateAll(observations map[string][]model.FieldDataSource) []model.CrossValidatedField {
	names := make([]string, 0, len(observations))
	for name := range observations {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.CrossValidatedField, 0, len(names))
	for _, name := range names {
		out = append(out, ValidateField(name, observations[name]))
	}
	return out
}

// agreementScore is 1 minus the fraction of cross-group comparisons that
// conflicted. No comparable pairs means full agreement.
func agreementScore(conflicts, pairs int) float64 {
	if pairs == 0 {
		return 1.0
	}
	score := 1.0 - float64(conflicts)/float64(pairs)
	if score < 0 {
		return 0
	}
	return score
}

// concreteSources filters to observations carrying usable values and
// clamps their confidences into [0, 1]. Input order is preserved.
func concreteSources(sources []model.FieldDataSource) []model.FieldDataSource {
	out := make([]model.FieldDataSource, 0, len(sources))
	for _, s := range sources {
		if !s.Concrete() {
			continue
		}
		s.Confidence = clamp01(s.Confidence)
		out = append(out, s)
	}
	return out
}

// pickWinner returns the highest-confidence observation. Ties keep the
// earliest observation, so results are stable for identical inputs.
func pickWinner(sources []model.FieldDataSource) model.FieldDataSource {
	best := sources[0]
	for _, s := range sources[1:] {
		if s.Confidence > best.Confidence {
			best = s
		}
	}
	return best
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
