// Package store persists research runs and intake items. Two backends
// implement the same interface: SQLite for single-operator local use and
// Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/resellkit/research-core/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	ItemID       string          `json:"item_id,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store is the persistence interface for the research pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, run *model.ResearchRun) error
	UpdateRun(ctx context.Context, run *model.ResearchRun) error
	GetRun(ctx context.Context, runID string) (*model.ResearchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error)

	// Items
	SaveItems(ctx context.Context, items []model.Item) (int64, error)
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	ListItems(ctx context.Context, limit int) ([]model.Item, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
