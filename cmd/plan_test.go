package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/planner"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPlanSnapshot(t *testing.T) {
	path := writeSnapshot(t, `{
		"states": {"item_id": "itm-1", "fields": {}, "iterations": 2, "cost_usd": 0.10},
		"context": {"has_barcode": true},
		"history": {"attempts_by_tool": {"barcode_lookup": 1}, "failed_tools": {}}
	}`)

	snap, err := readPlanSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "itm-1", snap.States.ItemID)
	assert.Equal(t, 2, snap.States.Iterations)
	assert.True(t, snap.Context.HasBarcode)
	assert.Equal(t, 1, snap.History.AttemptsByTool["barcode_lookup"])
}

func TestReadPlanSnapshot_MissingFile(t *testing.T) {
	_, err := readPlanSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot")
}

func TestReadPlanSnapshot_BadJSON(t *testing.T) {
	path := writeSnapshot(t, `{not json`)

	_, err := readPlanSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse snapshot")
}

func TestReadPlanSnapshot_NoStates(t *testing.T) {
	path := writeSnapshot(t, `{"context": {}}`)

	_, err := readPlanSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field states")
}

func TestBuildPlanInput_Fallbacks(t *testing.T) {
	states := &model.ItemFieldStates{ItemID: "itm-1", Fields: map[string]*model.FieldState{}}
	fallbackCatalog := []model.Tool{{ID: "web_search", Priority: 50, CostUsd: 0.01, Fields: []string{"*"}}}
	fallbackConstraints := model.DefaultConstraints(model.ModeStandard)

	got := buildPlanInput(planSnapshot{States: states}, fallbackCatalog, fallbackConstraints)

	want := planner.Input{
		States:      states,
		Constraints: fallbackConstraints,
		History:     model.NewTaskHistory(),
		Catalog:     fallbackCatalog,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPlanInput_SnapshotWins(t *testing.T) {
	states := &model.ItemFieldStates{ItemID: "itm-1", Fields: map[string]*model.FieldState{}}
	snapConstraints := &model.ResearchConstraints{MaxIterations: 3, MaxCostUsd: 0.05, RequiredConfidence: 0.9}
	snapHistory := &model.ResearchTaskHistory{
		AttemptsByTool:        map[string]int{"web_search": 2},
		FailedTools:           map[string]bool{},
		ConsecutiveNoProgress: 1,
	}
	snapCatalog := []model.Tool{{ID: "barcode_lookup", Priority: 90, CostUsd: 0.005, Fields: []string{"brand", "model"}}}

	got := buildPlanInput(planSnapshot{
		States:      states,
		Constraints: snapConstraints,
		History:     snapHistory,
		Catalog:     snapCatalog,
	}, []model.Tool{{ID: "fallback"}}, model.DefaultConstraints(model.ModeThorough))

	want := planner.Input{
		States:      states,
		Constraints: *snapConstraints,
		History:     snapHistory,
		Catalog:     snapCatalog,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanSnapshot_EndToEnd(t *testing.T) {
	path := writeSnapshot(t, `{
		"states": {
			"item_id": "itm-1",
			"fields": {
				"brand": {"name": "brand", "status": "pending", "confidence": {"value": 0}}
			}
		},
		"context": {"has_barcode": true},
		"catalog": [
			{"id": "barcode_lookup", "priority": 90, "cost_usd": 0.005, "fields": ["brand"], "requires": ["barcode"]},
			{"id": "web_search", "priority": 50, "cost_usd": 0.01, "fields": ["*"]}
		]
	}`)

	snap, err := readPlanSnapshot(path)
	require.NoError(t, err)

	in := buildPlanInput(snap, nil, model.DefaultConstraints(model.ModeStandard))
	task, reason := planner.New(planner.DefaultConfig()).PlanNext(in)

	require.Empty(t, reason)
	require.NotNil(t, task)
	assert.Equal(t, "barcode_lookup", task.Tool)
	assert.Equal(t, []string{"brand"}, task.TargetFields)
}
