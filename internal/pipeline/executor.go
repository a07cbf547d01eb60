package pipeline

import (
	"context"

	"github.com/resellkit/research-core/internal/model"
)

// Observation is a single field value reported by one tool invocation.
type Observation struct {
	Field  string
	Source model.FieldDataSource
}

// ToolResult carries everything a tool invocation produced: the field
// observations to merge, the actual spend, and for market tools the
// number of sold comparables behind the price.
type ToolResult struct {
	Observations []Observation
	CostUsd      float64
	Comparables  int
}

// ToolExecutor invokes one catalog tool against an item. Implementations
// own their transport; the runner owns rate limiting and retries around
// the call.
type ToolExecutor interface {
	Execute(ctx context.Context, item model.Item, task model.ResearchTask) (*ToolResult, error)
}
