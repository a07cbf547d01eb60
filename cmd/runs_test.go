package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/monitoring"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.ResearchRun{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Item:   model.Item{ID: "itm-1", Name: "Sony WH-1000XM4 Headphones"},
			Status: model.RunStatusComplete,
			Result: &model.RunResult{
				StopReason:      model.StopPipelineComplete,
				CompletionScore: 0.91,
				CostUsd:         0.42,
			},
			CreatedAt: now,
			UpdatedAt: now.Add(90 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Item:      model.Item{ID: "itm-2", Name: "Mystery Box"},
			Status:    model.RunStatusResearching,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "ITEM")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "Sony WH-1000XM4 Headphones")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "pipeline_complete")
	assert.Contains(t, output, "0.91")
	assert.Contains(t, output, "$0.42")
	assert.Contains(t, output, "Mystery Box")
	assert.Contains(t, output, "researching")
	assert.Contains(t, output, "2026-08-15 10:30")
	assert.Contains(t, output, "abc12345")
}

func TestFormatRunsList_TruncatesLongNames(t *testing.T) {
	runs := []model.ResearchRun{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Item:   model.Item{Name: "An Extremely Long Item Name That Overflows The Column"},
			Status: model.RunStatusFailed,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "An Extremely Long Item Name...")
	assert.NotContains(t, output, "Overflows")
}

func TestFormatRunStats(t *testing.T) {
	snap := monitoring.MetricsSnapshot{
		RunsTotal:          10,
		RunsComplete:       7,
		RunsFailed:         2,
		RunsResearching:    1,
		FailRate:           2.0 / 9.0,
		ReadyToPublish:     5,
		ReadyRate:          5.0 / 9.0,
		AvgCompletionScore: 0.81,
		ConflictsTotal:     4,
		TotalCostUsd:       3.75,
		AvgCostUsd:         0.42,
		AvgIterations:      8.5,
		StopReasons: map[model.StopReason]int{
			model.StopPipelineComplete: 6,
			model.StopBudgetExhausted:  2,
			model.StopNoProgress:       1,
		},
		LookbackHours: 24,
	}

	var buf bytes.Buffer
	formatRunStats(&buf, snap)

	output := buf.String()
	assert.Contains(t, output, "last 24h")
	assert.Contains(t, output, "Total runs:")
	assert.Contains(t, output, "10")
	assert.Contains(t, output, "Ready to publish:")
	assert.Contains(t, output, "0.81")
	assert.Contains(t, output, "$3.75")
	assert.Contains(t, output, "$0.42")
	assert.Contains(t, output, "8.5")
	assert.Contains(t, output, "pipeline_complete:")
	assert.Contains(t, output, "budget_exhausted:")
	assert.Contains(t, output, "no_progress:")
}

func TestFormatRunStats_AllRunsWindow(t *testing.T) {
	var buf bytes.Buffer
	formatRunStats(&buf, monitoring.MetricsSnapshot{})

	output := buf.String()
	assert.Contains(t, output, "all runs")
	assert.NotContains(t, output, "Stop reasons")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "", truncateID(""))
}
