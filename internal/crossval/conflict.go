package crossval

import (
	"math"
	"strings"
	"time"

	"github.com/resellkit/research-core/internal/model"
)

// minorNumericDiff is the relative difference under which a numeric
// conflict is minor rather than major.
const minorNumericDiff = 0.20

// DetectConflicts returns every cross-group disagreement among the
// observations of one field. Same-group disagreements are not conflicts:
// sources sharing a failure mode are expected to drift together.
func DetectConflicts(field string, sources []model.FieldDataSource) []model.Conflict {
	conflicts, _ := compareSources(field, concreteSources(sources))
	return conflicts
}

// compareSources walks every unordered pair of concrete observations from
// different groups and records disagreements. It also returns the number
// of comparable pairs for the agreement score denominator.
func compareSources(field string, sources []model.FieldDataSource) ([]model.Conflict, int) {
	var conflicts []model.Conflict
	pairs := 0

	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			a, b := sources[i], sources[j]
			ga, gb := GroupFor(a.SourceType), GroupFor(b.SourceType)
			if ga == gb {
				continue
			}
			pairs++
			if ValuesAgree(a.RawValue, b.RawValue) {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				FieldName: field,
				Value1:    a.RawValue,
				Source1:   a.SourceType,
				Group1:    ga,
				Value2:    b.RawValue,
				Source2:   b.SourceType,
				Group2:    gb,
				Severity:  severity(a.RawValue, b.RawValue),
				Timestamp: laterOf(a.Timestamp, b.Timestamp),
			})
		}
	}

	return conflicts, pairs
}

// severity classifies a disagreement. Numbers within 20% relative
// difference are minor, strings where one contains the other are minor
// ("D750" vs "Nikon D750"), everything else is major.
func severity(a, b any) model.ConflictSeverity {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return model.SeverityMajor
		}
		denom := math.Abs(af+bf) / 2
		if denom == 0 {
			return model.SeverityMajor
		}
		if math.Abs(af-bf)/denom <= minorNumericDiff {
			return model.SeverityMinor
		}
		return model.SeverityMajor
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		na, nb := normalizeString(as), normalizeString(bs)
		if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
			return model.SeverityMinor
		}
	}

	return model.SeverityMajor
}

// laterOf keeps conflict timestamps deterministic without a clock: the
// conflict is stamped with the newer of the two observations.
func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
