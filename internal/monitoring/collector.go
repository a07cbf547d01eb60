// Package monitoring aggregates research-run statistics and raises
// webhook alerts when batch throughput degrades.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/store"
)

// MetricsSnapshot holds a point-in-time view of research throughput.
type MetricsSnapshot struct {
	// Run counts within the lookback window.
	RunsTotal       int     `json:"runs_total"`
	RunsComplete    int     `json:"runs_complete"`
	RunsFailed      int     `json:"runs_failed"`
	RunsResearching int     `json:"runs_researching"`
	FailRate        float64 `json:"fail_rate"`

	// Outcome quality.
	ReadyToPublish     int     `json:"ready_to_publish"`
	ReadyRate          float64 `json:"ready_rate"`
	AvgCompletionScore float64 `json:"avg_completion_score"`
	ConflictsTotal     int     `json:"conflicts_total"`

	// Resource spend.
	TotalCostUsd  float64 `json:"total_cost_usd"`
	AvgCostUsd    float64 `json:"avg_cost_usd"`
	AvgIterations float64 `json:"avg_iterations"`

	// Why sessions halted.
	StopReasons map[model.StopReason]int `json:"stop_reasons"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Finished returns the number of runs that reached a terminal status.
func (s *MetricsSnapshot) Finished() int {
	return s.RunsComplete + s.RunsFailed
}

// StallRate returns the share of finished runs that halted for lack of
// progress.
func (s *MetricsSnapshot) StallRate() float64 {
	finished := s.Finished()
	if finished == 0 {
		return 0
	}
	return float64(s.StopReasons[model.StopNoProgress]) / float64(finished)
}

// Collector gathers run statistics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector over a run store.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window. A
// non-positive window covers all recorded runs.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		StopReasons:   make(map[model.StopReason]int),
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	filter := store.RunFilter{Limit: 10000}
	if lookbackHours > 0 {
		filter.CreatedAfter = time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)
	}

	runs, err := c.store.ListRuns(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	var (
		totalCost  float64
		totalIters int
		totalScore float64
		withResult int
		scoredRuns int
	)

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusResearching:
			snap.RunsResearching++
		}
		if r.Result == nil {
			continue
		}
		withResult++
		totalCost += r.Result.CostUsd
		totalIters += r.Result.Iterations
		snap.ConflictsTotal += r.Result.ConflictCount
		if r.Result.ReadyToPublish {
			snap.ReadyToPublish++
		}
		if r.Result.StopReason != "" {
			snap.StopReasons[r.Result.StopReason]++
		}
		if r.Result.CompletionScore > 0 {
			totalScore += r.Result.CompletionScore
			scoredRuns++
		}
	}

	snap.TotalCostUsd = totalCost
	if withResult > 0 {
		snap.AvgCostUsd = totalCost / float64(withResult)
		snap.AvgIterations = float64(totalIters) / float64(withResult)
	}
	if scoredRuns > 0 {
		snap.AvgCompletionScore = totalScore / float64(scoredRuns)
	}
	if finished := snap.Finished(); finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
		snap.ReadyRate = float64(snap.ReadyToPublish) / float64(finished)
	}

	return snap, nil
}
