package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/model"
)

func TestGroupFor(t *testing.T) {
	assert.Equal(t, model.GroupCatalogProvider, GroupFor(model.SourceUPCDatabase))
	assert.Equal(t, model.GroupCatalogProvider, GroupFor(model.SourceProductCatalog))
	assert.Equal(t, model.GroupWebSearch, GroupFor(model.SourceTargetedSearch))
	// Unmapped source types fall back to web search.
	assert.Equal(t, model.GroupWebSearch, GroupFor(model.SourceType("psychic_hotline")))
}

func TestCorroborationMultiplier_Bases(t *testing.T) {
	assert.InDelta(t, 0.80, CorroborationMultiplier(0, nil), 1e-9)
	assert.InDelta(t, 0.80, CorroborationMultiplier(1, nil), 1e-9)
	assert.InDelta(t, 1.00, CorroborationMultiplier(2, nil), 1e-9)
	assert.InDelta(t, 1.10, CorroborationMultiplier(3, nil), 1e-9)
	assert.InDelta(t, 1.10, CorroborationMultiplier(7, nil), 1e-9)
}

func TestCorroborationMultiplier_PenaltiesAndFloor(t *testing.T) {
	major := model.Conflict{Severity: model.SeverityMajor}
	minor := model.Conflict{Severity: model.SeverityMinor}

	assert.InDelta(t, 1.00, CorroborationMultiplier(3, []model.Conflict{major}), 1e-9)
	assert.InDelta(t, 0.95, CorroborationMultiplier(2, []model.Conflict{minor}), 1e-9)
	assert.InDelta(t, 0.85, CorroborationMultiplier(2, []model.Conflict{major, minor}), 1e-9)

	// Seven major conflicts would drive 1.10 to 0.40; the floor holds at 0.50.
	many := []model.Conflict{major, major, major, major, major, major, major}
	assert.InDelta(t, 0.50, CorroborationMultiplier(3, many), 1e-9)
}

func TestValidateField_TwoGroupsAgreeing(t *testing.T) {
	// Corroborated across two independent groups: better than either
	// source would score alone (a lone source is discounted to 0.80x).
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.85, "Nikon D750", t0),
		src(model.SourceVisionAnalysis, 0.70, "nikon d750", t0),
	}

	cv := ValidateField("title", sources)
	assert.Equal(t, "Nikon D750", cv.Value, "highest-confidence source wins")
	assert.InDelta(t, 0.85, cv.BaseConfidence, 1e-9)
	assert.Equal(t, 2, cv.IndependentGroupCount)
	assert.Empty(t, cv.Conflicts)
	assert.InDelta(t, 1.0, cv.AgreementScore, 1e-9)
	assert.InDelta(t, 1.0, cv.CorroborationMultiplier, 1e-9)
	assert.InDelta(t, 0.85, cv.CrossValidatedConfidence, 1e-9)

	alone := ValidateField("title", sources[:1])
	assert.Less(t, alone.CrossValidatedConfidence, cv.CrossValidatedConfidence)
	assert.InDelta(t, 0.85*0.80, alone.CrossValidatedConfidence, 1e-9)
}

func TestValidateField_SameGroupAddsNothing(t *testing.T) {
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.85, "Nikon D750", t0),
		src(model.SourceProductCatalog, 0.80, "Nikon D750", t0),
	}

	cv := ValidateField("title", sources)
	assert.Equal(t, 1, cv.IndependentGroupCount)
	assert.InDelta(t, 0.80, cv.CorroborationMultiplier, 1e-9)
	assert.InDelta(t, 0.85*0.80, cv.CrossValidatedConfidence, 1e-9)
}

func TestValidateField_CapAt098(t *testing.T) {
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.95, "Nikon D750", t0),
		src(model.SourceVisionAnalysis, 0.90, "Nikon D750", t0),
		src(model.SourceEbayAPI, 0.92, "nikon d750", t0),
	}

	cv := ValidateField("title", sources)
	assert.Equal(t, 3, cv.IndependentGroupCount)
	assert.InDelta(t, 1.10, cv.CorroborationMultiplier, 1e-9)
	// 0.95 * 1.10 = 1.045 would exceed certainty; capped at 0.98.
	assert.InDelta(t, 0.98, cv.CrossValidatedConfidence, 1e-9)
}

func TestValidateField_ConflictPenalty(t *testing.T) {
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.90, "Nikon", t0),
		src(model.SourceVisionAnalysis, 0.70, "Canon", t1),
	}

	cv := ValidateField("brand", sources)
	require.Len(t, cv.Conflicts, 1)
	assert.Equal(t, "Nikon", cv.Value)
	assert.InDelta(t, 0.90, cv.CorroborationMultiplier, 1e-9) // 1.00 - 0.10 major
	assert.InDelta(t, 0.81, cv.CrossValidatedConfidence, 1e-9)
	assert.InDelta(t, 0.0, cv.AgreementScore, 1e-9)
}

func TestValidateField_AgreementScorePartial(t *testing.T) {
	// Three groups, one disagreeing pair out of three comparable pairs.
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.9, 100.0, t0),
		src(model.SourceWebSearch, 0.7, 102.0, t0),
		src(model.SourceEbayAPI, 0.6, 130.0, t0),
	}

	cv := ValidateField("market_price", sources)
	// 100 vs 102 agrees; 100 vs 130 and 102 vs 130 conflict.
	require.Len(t, cv.Conflicts, 2)
	assert.InDelta(t, 1.0/3.0, cv.AgreementScore, 1e-9)
}

func TestValidateField_NoSources(t *testing.T) {
	cv := ValidateField("brand", nil)
	assert.Nil(t, cv.Value)
	assert.Zero(t, cv.BaseConfidence)
	assert.Zero(t, cv.CrossValidatedConfidence)
	assert.Zero(t, cv.IndependentGroupCount)
	assert.InDelta(t, 1.0, cv.AgreementScore, 1e-9)

	empty := ValidateField("brand", []model.FieldDataSource{
		src(model.SourceWebSearch, 0.9, nil, t0),
		src(model.SourceOCRExtraction, 0.8, "", t0),
	})
	assert.Nil(t, empty.Value)
	assert.Zero(t, empty.CrossValidatedConfidence)
}

func TestValidateField_TieKeepsFirst(t *testing.T) {
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 0.8, "Nikon", t0),
		src(model.SourceVisionAnalysis, 0.8, "nikon", t0),
	}
	cv := ValidateField("brand", sources)
	assert.Equal(t, "Nikon", cv.Value)
}

func TestValidateField_ClampsInputConfidence(t *testing.T) {
	sources := []model.FieldDataSource{
		src(model.SourceUPCDatabase, 3.0, "Nikon", t0),
	}
	cv := ValidateField("brand", sources)
	assert.InDelta(t, 1.0, cv.BaseConfidence, 1e-9)
	assert.InDelta(t, 0.80, cv.CrossValidatedConfidence, 1e-9)
}

func TestValidateAll_SortedByName(t *testing.T) {
	obs := map[string][]model.FieldDataSource{
		"model": {src(model.SourceUPCDatabase, 0.9, "D750", t0)},
		"brand": {src(model.SourceUPCDatabase, 0.9, "Nikon", t0)},
		"color": {src(model.SourceVisionAnalysis, 0.6, "black", t0)},
	}

	fields := ValidateAll(obs)
	require.Len(t, fields, 3)
	assert.Equal(t, "brand", fields[0].FieldName)
	assert.Equal(t, "color", fields[1].FieldName)
	assert.Equal(t, "model", fields[2].FieldName)
}

func TestSummarize(t *testing.T) {
	fields := []model.CrossValidatedField{
		{IndependentGroupCount: 2, CorroborationMultiplier: 1.0, AgreementScore: 1.0},
		{IndependentGroupCount: 1, CorroborationMultiplier: 0.8, AgreementScore: 1.0},
		{
			IndependentGroupCount:   3,
			CorroborationMultiplier: 0.95,
			AgreementScore:          0.5,
			Conflicts: []model.Conflict{
				{Severity: model.SeverityMajor},
				{Severity: model.SeverityMinor},
			},
		},
	}

	s := Summarize(fields)
	assert.Equal(t, 3, s.Fields)
	assert.Equal(t, 2, s.MultiSourceFields)
	assert.Equal(t, 2, s.Conflicts)
	assert.Equal(t, 1, s.MajorConflicts)
	assert.Equal(t, 1, s.MinorConflicts)
	assert.InDelta(t, (1.0+0.8+0.95)/3, s.MeanMultiplier, 1e-9)
	assert.InDelta(t, (1.0+1.0+0.5)/3, s.MeanAgreement, 1e-9)

	empty := Summarize(nil)
	assert.InDelta(t, 1.0, empty.MeanMultiplier, 1e-9)
}
