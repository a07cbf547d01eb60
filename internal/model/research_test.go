package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConstraints(t *testing.T) {
	fast := DefaultConstraints(ModeFast)
	std := DefaultConstraints(ModeStandard)
	thorough := DefaultConstraints(ModeThorough)

	assert.Less(t, fast.MaxIterations, std.MaxIterations)
	assert.Less(t, std.MaxIterations, thorough.MaxIterations)
	assert.Less(t, fast.MaxCostUsd, std.MaxCostUsd)
	assert.InDelta(t, 0.85, std.RequiredConfidence, 1e-9)
	assert.Equal(t, ModeFast, fast.Mode)
	assert.LessOrEqual(t, std.RecommendedConfidence, std.RequiredConfidence)

	// Unknown mode falls back to standard.
	assert.Equal(t, std, DefaultConstraints(ResearchMode("turbo")))
}

func TestConstraints_Bar(t *testing.T) {
	c := ResearchConstraints{RequiredConfidence: 0.85, RecommendedConfidence: 0.70}
	assert.InDelta(t, 0.85, c.Bar(true), 1e-9)
	assert.InDelta(t, 0.70, c.Bar(false), 1e-9)

	// Without a recommended bar, optional fields hold to the required one.
	single := ResearchConstraints{RequiredConfidence: 0.85}
	assert.InDelta(t, 0.85, single.Bar(false), 1e-9)
}

func TestTaskHistory_AttemptsAndFailures(t *testing.T) {
	h := NewTaskHistory()

	h.RecordAttempt("vision")
	h.RecordAttempt("vision")
	h.RecordAttempt("web_search")

	assert.Equal(t, 2, h.Attempts("vision"))
	assert.Equal(t, 1, h.Attempts("web_search"))
	assert.Zero(t, h.Attempts("never_used"))

	assert.False(t, h.Failed("vision"))
	h.MarkFailed("vision")
	assert.True(t, h.Failed("vision"))
}

func TestTaskHistory_ObserveStates(t *testing.T) {
	h := NewTaskHistory()

	// First observation establishes the baseline.
	assert.True(t, h.ObserveStates("aaaa"))
	assert.Zero(t, h.ConsecutiveNoProgress)

	assert.False(t, h.ObserveStates("aaaa"))
	assert.False(t, h.ObserveStates("aaaa"))
	assert.Equal(t, 2, h.ConsecutiveNoProgress)

	// Any change resets the streak.
	assert.True(t, h.ObserveStates("bbbb"))
	assert.Zero(t, h.ConsecutiveNoProgress)
}

func TestContextForItem(t *testing.T) {
	item := Item{
		ID:         "item-1",
		Name:       "Nikon D750 body",
		Category:   "cameras",
		Brand:      "Nikon",
		Barcode:    "018208015542",
		ImageCount: 3,
	}

	rc := ContextForItem(item, map[string]bool{"upcitemdb": true})
	assert.True(t, rc.HasBarcode)
	assert.True(t, rc.HasBrand)
	assert.False(t, rc.HasModel)
	assert.True(t, rc.HasCategory)
	assert.Equal(t, 3, rc.ImageCount)
	assert.True(t, rc.ProviderConfigured("upcitemdb"))
	assert.False(t, rc.ProviderConfigured("scandit"))
}
