package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/store"
)

// mockStore implements store.Store for testing.
type mockStore struct {
	runs    []model.ResearchRun
	listErr error
}

func (m *mockStore) ListRuns(_ context.Context, filter store.RunFilter) ([]model.ResearchRun, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var filtered []model.ResearchRun
	for _, r := range m.runs {
		if !filter.CreatedAfter.IsZero() && r.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// Unused store methods, present only to satisfy the interface.
func (m *mockStore) CreateRun(context.Context, *model.ResearchRun) error { return nil }
func (m *mockStore) UpdateRun(context.Context, *model.ResearchRun) error { return nil }
func (m *mockStore) GetRun(context.Context, string) (*model.ResearchRun, error) {
	return nil, nil
}
func (m *mockStore) SaveItems(context.Context, []model.Item) (int64, error) { return 0, nil }
func (m *mockStore) GetItem(context.Context, string) (*model.Item, error)   { return nil, nil }
func (m *mockStore) ListItems(context.Context, int) ([]model.Item, error)   { return nil, nil }
func (m *mockStore) Migrate(context.Context) error                          { return nil }
func (m *mockStore) Close() error                                           { return nil }

func TestCollector_EmptyStore(t *testing.T) {
	c := NewCollector(&mockStore{})

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.RunsTotal)
	assert.Equal(t, 0, snap.RunsFailed)
	assert.Equal(t, 0.0, snap.FailRate)
	assert.Equal(t, 0.0, snap.TotalCostUsd)
	assert.Empty(t, snap.StopReasons)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollector_RunMetrics(t *testing.T) {
	now := time.Now().UTC()
	st := &mockStore{
		runs: []model.ResearchRun{
			{ID: "1", Status: model.RunStatusComplete, CreatedAt: now.Add(-1 * time.Hour), Result: &model.RunResult{
				StopReason: model.StopPipelineComplete, Iterations: 6, CostUsd: 0.24,
				CompletionScore: 0.90, ReadyToPublish: true,
			}},
			{ID: "2", Status: model.RunStatusComplete, CreatedAt: now.Add(-2 * time.Hour), Result: &model.RunResult{
				StopReason: model.StopNoProgress, Iterations: 7, CostUsd: 0.21,
				CompletionScore: 0.50, ConflictCount: 3,
			}},
			{ID: "3", Status: model.RunStatusFailed, CreatedAt: now.Add(-3 * time.Hour), Result: &model.RunResult{
				StopReason: model.StopCanceled,
			}},
			{ID: "4", Status: model.RunStatusResearching, CreatedAt: now.Add(-30 * time.Minute)},
			// Outside the lookback window.
			{ID: "5", Status: model.RunStatusFailed, CreatedAt: now.Add(-48 * time.Hour), Result: &model.RunResult{}},
		},
	}

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.RunsTotal)
	assert.Equal(t, 2, snap.RunsComplete)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.Equal(t, 1, snap.RunsResearching)
	assert.Equal(t, 3, snap.Finished())
	assert.InDelta(t, 1.0/3.0, snap.FailRate, 0.001)

	assert.Equal(t, 1, snap.ReadyToPublish)
	assert.InDelta(t, 1.0/3.0, snap.ReadyRate, 0.001)
	assert.InDelta(t, 0.70, snap.AvgCompletionScore, 0.001)
	assert.Equal(t, 3, snap.ConflictsTotal)

	assert.InDelta(t, 0.45, snap.TotalCostUsd, 0.001)
	assert.InDelta(t, 0.15, snap.AvgCostUsd, 0.001)
	assert.InDelta(t, 13.0/3.0, snap.AvgIterations, 0.001)

	assert.Equal(t, map[model.StopReason]int{
		model.StopPipelineComplete: 1,
		model.StopNoProgress:       1,
		model.StopCanceled:         1,
	}, snap.StopReasons)
	assert.InDelta(t, 1.0/3.0, snap.StallRate(), 0.001)
}

func TestCollector_NoFinishedRuns(t *testing.T) {
	now := time.Now().UTC()
	st := &mockStore{
		runs: []model.ResearchRun{
			{ID: "1", Status: model.RunStatusResearching, CreatedAt: now.Add(-1 * time.Hour)},
			{ID: "2", Status: model.RunStatusResearching, CreatedAt: now.Add(-2 * time.Hour)},
		},
	}

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0.0, snap.FailRate)
	assert.Equal(t, 0.0, snap.ReadyRate)
	assert.Equal(t, 0.0, snap.StallRate())
}

func TestCollector_ZeroLookbackCoversAllRuns(t *testing.T) {
	now := time.Now().UTC()
	st := &mockStore{
		runs: []model.ResearchRun{
			{ID: "1", Status: model.RunStatusComplete, CreatedAt: now.Add(-1 * time.Hour)},
			{ID: "2", Status: model.RunStatusFailed, CreatedAt: now.Add(-400 * time.Hour)},
		},
	}

	snap, err := NewCollector(st).Collect(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RunsTotal)
	assert.Equal(t, 0, snap.LookbackHours)
}

func TestCollector_ListError(t *testing.T) {
	st := &mockStore{listErr: eris.New("boom")}

	_, err := NewCollector(st).Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring: list runs")
}
