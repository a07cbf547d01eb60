package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/resellkit/research-core/internal/pipeline"
	"github.com/resellkit/research-core/internal/planner"
	"github.com/resellkit/research-core/internal/registry"
	"github.com/resellkit/research-core/internal/store"
)

// runEnv holds the initialized store, registries, and runner needed by the
// research and batch commands.
type runEnv struct {
	Store   store.Store
	Catalog *registry.Catalog
	Schemas *registry.SchemaSet
	Runner  *pipeline.Runner
}

// Close releases resources held by the environment.
func (e *runEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initRunEnv sets up the store, loads the tool catalog and category
// schemas, and builds the pipeline runner. Callers should defer env.Close().
func initRunEnv(ctx context.Context, mode string) (*runEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	catalog, err := registry.LoadCatalog(cfg.Registry.ToolsPath)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load tool catalog")
	}
	schemas, err := registry.LoadSchemas(cfg.Registry.SchemasPath)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load category schemas")
	}

	zap.L().Info("registries loaded",
		zap.Int("tools", catalog.Len()),
		zap.Strings("categories", schemas.Categories()),
	)

	opts := []pipeline.Option{
		pipeline.WithStore(st),
		pipeline.WithRetry(pipeline.RetryConfig{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		}),
	}
	if cfg.Pipeline.ToolRatePerSec > 0 {
		opts = append(opts, pipeline.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.Pipeline.ToolRatePerSec), 1)))
	}

	exec := pipeline.NewSimExecutor(pipeline.SimConfig{
		Seed:           cfg.Sim.Seed,
		Comps:          cfg.Sim.Comps,
		FailTools:      cfg.Sim.FailTools,
		ConflictFields: cfg.Sim.ConflictFields,
	})

	runner := pipeline.NewRunner(catalog, schemas, planner.New(planner.DefaultConfig()), exec, cfg.Pipeline.Constraints(), opts...)

	return &runEnv{
		Store:   st,
		Catalog: catalog,
		Schemas: schemas,
		Runner:  runner,
	}, nil
}
