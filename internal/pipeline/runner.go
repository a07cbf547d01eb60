// Package pipeline runs research sessions end to end. The decision
// packages (crossval, planner, goals) stay pure; this package owns every
// side effect around them: the clock, rate limiting, retries, tool
// execution, persistence, and logging.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/resellkit/research-core/internal/crossval"
	"github.com/resellkit/research-core/internal/goals"
	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/planner"
	"github.com/resellkit/research-core/internal/registry"
	"github.com/resellkit/research-core/internal/store"
)

// intakeConfidence is the per-source confidence of operator-entered facts.
// One source alone never clears the publish bar; intake data still needs
// one independent corroboration like everything else.
const intakeConfidence = 0.98

// Runner drives research sessions for items.
type Runner struct {
	catalog     *registry.Catalog
	schemas     *registry.SchemaSet
	planner     *planner.Planner
	exec        ToolExecutor
	store       store.Store
	obs         Observer
	limiter     *rate.Limiter
	retry       RetryConfig
	providers   map[string]bool
	constraints model.ResearchConstraints
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists runs to s. Without it sessions stay in memory.
func WithStore(s store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithObserver mirrors session events to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.obs = o
		}
	}
}

// WithRateLimit caps tool invocations across the runner.
func WithRateLimit(l *rate.Limiter) Option {
	return func(r *Runner) { r.limiter = l }
}

// WithRetry overrides the retry policy around tool invocations.
func WithRetry(cfg RetryConfig) Option {
	return func(r *Runner) { r.retry = cfg }
}

// WithProviders declares which external providers are configured, for
// tools gated on a provider prerequisite.
func WithProviders(p map[string]bool) Option {
	return func(r *Runner) { r.providers = p }
}

// WithNow fixes the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner builds a runner around a tool catalog, category schemas, a
// planner, and an executor.
func NewRunner(catalog *registry.Catalog, schemas *registry.SchemaSet, pl *planner.Planner, exec ToolExecutor, constraints model.ResearchConstraints, opts ...Option) *Runner {
	r := &Runner{
		catalog:     catalog,
		schemas:     schemas,
		planner:     pl,
		exec:        exec,
		obs:         NopObserver{},
		retry:       DefaultRetryConfig(),
		constraints: constraints,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// session is the mutable state of one in-flight research session.
type session struct {
	item    model.Item
	states  *model.ItemFieldStates
	goals   model.GoalList
	history *model.ResearchTaskHistory
	rctx    model.ResearchContext
	start   time.Time
	phase   goals.Phase
	comps   int
	listing *model.Listing
	// conflicts holds the latest validation conflicts per field, replaced
	// wholesale on each re-validation.
	conflicts map[string][]model.Conflict
	log       *zap.Logger
}

// Run researches one item until the pipeline completes or a resource
// limit stops it. The returned run is always populated; the error is
// non-nil only when the session could not be persisted at start or the
// context ended.
func (r *Runner) Run(ctx context.Context, item model.Item) (*model.ResearchRun, error) {
	start := r.now()
	s := &session{
		item:      item,
		states:    model.NewItemFieldStates(item.ID, r.schemas.ForCategory(item.Category).Fields),
		goals:     goals.DefaultGoals(r.constraints.RequiredConfidence),
		history:   model.NewTaskHistory(),
		rctx:      model.ContextForItem(item, r.providers),
		start:     start,
		phase:     goals.PhaseIdentification,
		conflicts: make(map[string][]model.Conflict),
		log:       zap.L().With(zap.String("item", item.ID), zap.String("name", item.Name)),
	}
	r.seedIntake(s)

	run := &model.ResearchRun{
		ID:        uuid.NewString(),
		Item:      item,
		Status:    model.RunStatusResearching,
		CreatedAt: start,
		UpdatedAt: start,
	}
	if r.store != nil {
		if err := r.store.CreateRun(ctx, run); err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
	}
	s.log.Info("pipeline: session started",
		zap.String("run", run.ID),
		zap.String("mode", string(r.constraints.Mode)),
		zap.Int("fields", len(s.states.Fields)),
		zap.Int("max_iterations", r.constraints.MaxIterations),
		zap.Float64("max_cost_usd", r.constraints.MaxCostUsd))

	reason := r.loop(ctx, s)
	r.settle(s, reason)
	s.states.ElapsedMs = r.now().Sub(s.start).Milliseconds()
	s.states.Recompute()
	result := r.buildResult(s, reason)

	run.Result = result
	run.UpdatedAt = r.now()
	if reason == model.StopCanceled {
		run.Status = model.RunStatusFailed
		run.Error = ctx.Err().Error()
	} else {
		run.Status = model.RunStatusComplete
	}

	if r.store != nil {
		// Persist even when the session context is gone.
		if err := r.store.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
			s.log.Warn("pipeline: persist run", zap.Error(err))
		}
	}
	r.obs.OnStop(item.ID, reason, result)
	s.log.Info("pipeline: session finished",
		zap.String("reason", string(reason)),
		zap.Int("iterations", result.Iterations),
		zap.Float64("cost_usd", result.CostUsd),
		zap.Float64("completion", result.CompletionScore),
		zap.Bool("ready", result.ReadyToPublish))

	if reason == model.StopCanceled {
		return run, eris.Wrap(ctx.Err(), "pipeline: session canceled")
	}
	return run, nil
}

// loop is the research loop: route, plan, execute, merge, repeat. It
// returns the reason the session stopped.
func (r *Runner) loop(ctx context.Context, s *session) model.StopReason {
	for {
		if ctx.Err() != nil {
			return model.StopCanceled
		}
		s.states.ElapsedMs = r.now().Sub(s.start).Milliseconds()
		if r.constraints.MaxTimeMs > 0 && s.states.ElapsedMs >= r.constraints.MaxTimeMs {
			return model.StopTimeLimit
		}

		idConf := goals.IdentificationConfidence(s.states)
		s.rctx.IdentificationConfidence = idConf
		d := goals.Route(s.goals, idConf, r.now())
		if d.Phase != s.phase {
			s.log.Info("pipeline: phase change",
				zap.String("from", string(s.phase)),
				zap.String("to", string(d.Phase)))
			r.obs.OnPhaseChange(s.item.ID, s.phase, d.Phase)
			s.phase = d.Phase
		}

		if d.Action == goals.ActionPersist {
			return model.StopPipelineComplete
		}

		if d.Forced {
			// Parallel work is wedged. Settle both open goals with the
			// evidence at hand; the next route lands on assembly.
			s.log.Warn("pipeline: parallel goals wedged, forcing assembly")
			goals.CompleteMetadata(s.goals, s.states, r.now())
			goals.CompleteMarket(s.goals, s.comps, r.now())
			continue
		}

		if d.Goal == model.GoalAssembleListing {
			s.listing = AssembleListing(s.item, s.states, r.now())
			goals.CompleteAssembly(s.goals, s.listing != nil, r.now())
			continue
		}

		goal := s.goals.ByType(d.Goal)
		if goal == nil {
			return model.StopFieldsExhausted
		}
		goal.Attempts++

		task, stop := r.planner.PlanNext(planner.Input{
			States:      s.states.ViewForGoal(d.Goal),
			Constraints: r.constraints,
			Context:     s.rctx,
			History:     s.history,
			Catalog:     r.catalog.Tools(),
		})
		if task == nil {
			if stop == model.StopFieldsExhausted {
				// Nothing left to research for this goal; score it and
				// let the router move on.
				r.completeGoal(s, d.Goal, idConf)
				continue
			}
			return stop
		}

		r.obs.OnTask(s.item.ID, d, *task)
		r.step(ctx, s, *task)
	}
}

// step executes one planned task and merges its outcome into the session.
func (r *Runner) step(ctx context.Context, s *session, task model.ResearchTask) {
	result, err := r.invoke(ctx, s.item, task)

	s.states.Iterations++
	s.history.RecordAttempt(task.Tool)
	for _, name := range task.TargetFields {
		if f := s.states.Field(name); f != nil {
			f.Attempts++
			if f.Status == model.FieldPending {
				f.Status = model.FieldResearching
			}
		}
	}

	if err != nil {
		s.log.Warn("pipeline: tool failed", zap.String("tool", task.Tool), zap.Error(err))
		s.history.MarkFailed(task.Tool)
		s.history.ObserveStates(s.states.Hash())
		return
	}

	cost := result.CostUsd
	if cost <= 0 {
		cost = task.EstimatedCost
	}
	s.states.CostUsd += cost
	if result.Comparables > s.comps {
		s.comps = result.Comparables
	}

	r.merge(s, result)
	r.refreshContext(s)
	changed := s.history.ObserveStates(s.states.Hash())
	s.states.Recompute()
	s.log.Debug("pipeline: iteration",
		zap.Int("iteration", s.states.Iterations),
		zap.String("tool", task.Tool),
		zap.Int("observations", len(result.Observations)),
		zap.Float64("cost_usd", s.states.CostUsd),
		zap.Bool("progress", changed))
}

// invoke runs one tool call through the rate limiter and retry policy.
func (r *Runner) invoke(ctx context.Context, item model.Item, task model.ResearchTask) (*ToolResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pipeline: rate limit wait")
		}
	}
	cfg := r.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		zap.L().Warn("pipeline: retrying tool",
			zap.String("tool", task.Tool),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	return DoVal(ctx, cfg, func(ctx context.Context) (*ToolResult, error) {
		return r.exec.Execute(ctx, item, task)
	})
}

// merge folds tool observations into field states and re-validates every
// touched field across its full evidence list.
func (r *Runner) merge(s *session, result *ToolResult) {
	now := r.now()
	touched := make(map[string]bool)
	for _, ob := range result.Observations {
		f := s.states.Field(ob.Field)
		if f == nil || f.Status.Terminal() {
			continue
		}
		src := ob.Source
		if src.Timestamp.IsZero() {
			src.Timestamp = now
		}
		f.AddSource(src)
		touched[ob.Field] = true
	}

	for _, name := range s.states.SortedNames() {
		if !touched[name] {
			continue
		}
		f := s.states.Field(name)
		cv := crossval.ValidateField(name, f.Confidence.Sources)
		f.ApplyValidation(cv, now)

		// Re-validation replays earlier source pairs first, so the tail
		// beyond the previous count is exactly the new conflicts.
		for _, c := range cv.Conflicts[len(s.conflicts[name]):] {
			s.log.Warn("pipeline: source conflict",
				zap.String("field", c.FieldName),
				zap.String("severity", string(c.Severity)),
				zap.String("source1", string(c.Source1)),
				zap.String("source2", string(c.Source2)))
			r.obs.OnConflict(s.item.ID, c)
		}
		s.conflicts[name] = cv.Conflicts

		if cv.CrossValidatedConfidence >= r.constraints.Bar(f.Required) {
			f.Status = model.FieldComplete
		} else if f.Status == model.FieldPending {
			f.Status = model.FieldResearching
		}
	}
}

// seedIntake turns facts the operator already entered into user-input
// observations, so research starts from them instead of rediscovering
// them.
func (r *Runner) seedIntake(s *session) {
	seed := map[string]string{
		"brand":    s.item.Brand,
		"category": s.item.Category,
		"model":    s.item.Model,
		"title":    s.item.Name,
	}
	now := r.now()
	for _, name := range []string{"brand", "category", "model", "title"} {
		val := seed[name]
		if val == "" {
			continue
		}
		f := s.states.Field(name)
		if f == nil {
			continue
		}
		f.AddSource(model.FieldDataSource{
			SourceType: model.SourceUserInput,
			Confidence: intakeConfidence,
			Timestamp:  now,
			RawValue:   val,
		})
		cv := crossval.ValidateField(name, f.Confidence.Sources)
		f.ApplyValidation(cv, now)
		s.conflicts[name] = cv.Conflicts
		if cv.CrossValidatedConfidence >= r.constraints.Bar(f.Required) {
			f.Status = model.FieldComplete
		} else {
			f.Status = model.FieldResearching
		}
	}
}

// refreshContext re-derives identification flags from researched values,
// so tools gated on brand+model unlock as soon as candidates exist
// rather than only from intake.
func (r *Runner) refreshContext(s *session) {
	s.rctx.HasBrand = s.item.Brand != "" || fieldKnown(s.states, "brand")
	s.rctx.HasModel = s.item.Model != "" || fieldKnown(s.states, "model")
	s.rctx.HasCategory = s.item.Category != "" || fieldKnown(s.states, "category")
}

// fieldKnown reports whether research produced any concrete candidate
// value for the field. A candidate is enough to build queries from; it
// does not have to be confident yet.
func fieldKnown(states *model.ItemFieldStates, name string) bool {
	f := states.Field(name)
	if f == nil || f.Value == nil {
		return false
	}
	if str, ok := f.Value.(string); ok && str == "" {
		return false
	}
	return true
}

// completeGoal settles a research goal whose field work is exhausted.
func (r *Runner) completeGoal(s *session, gt model.GoalType, idConf float64) {
	now := r.now()
	switch gt {
	case model.GoalIdentifyProduct:
		if g := s.goals.ByType(gt); g != nil && !g.Done() {
			g.Complete(idConf, now)
		}
	case model.GoalGatherMetadata:
		goals.CompleteMetadata(s.goals, s.states, now)
	case model.GoalResearchMarket:
		goals.CompleteMarket(s.goals, s.comps, now)
	}
	s.log.Debug("pipeline: goal settled", zap.String("goal", string(gt)))
}

// settle closes out whatever the loop left open, so persisted runs never
// carry dangling goals, then assigns terminal statuses to fields that
// automated research could not finish. Canceled sessions are left as the
// loop abandoned them.
func (r *Runner) settle(s *session, reason model.StopReason) {
	if reason == model.StopCanceled {
		return
	}
	now := r.now()
	if g := s.goals.ByType(model.GoalIdentifyProduct); g != nil && !g.Done() {
		g.Complete(goals.IdentificationConfidence(s.states), now)
	}
	goals.CompleteMetadata(s.goals, s.states, now)
	goals.CompleteMarket(s.goals, s.comps, now)
	if g := s.goals.ByType(model.GoalAssembleListing); g != nil && !g.Done() {
		// Assembly costs nothing; build what the evidence supports even
		// on a resource stop.
		s.listing = AssembleListing(s.item, s.states, now)
		goals.CompleteAssembly(s.goals, s.listing != nil, now)
	}

	for _, name := range s.states.SortedNames() {
		f := s.states.Field(name)
		if f.Status.Terminal() {
			continue
		}
		if f.Status == model.FieldPending && !f.Required {
			// Optional fields the session never reached stay pending.
			continue
		}
		switch {
		case f.Confidence.Value >= r.constraints.Bar(f.Required):
			f.Status = model.FieldComplete
		case f.Required:
			f.Status = model.FieldUserRequired
		default:
			f.Status = model.FieldFailed
		}
	}
}

// buildResult snapshots the finished session into a persistable result.
func (r *Runner) buildResult(s *session, reason model.StopReason) *model.RunResult {
	counts := s.states.Counts()
	res := &model.RunResult{
		FinalPhase:      string(s.phase),
		StopReason:      reason,
		Iterations:      s.states.Iterations,
		CostUsd:         s.states.CostUsd,
		ElapsedMs:       s.states.ElapsedMs,
		CompletionScore: s.states.CompletionScore,
		ReadyToPublish:  s.states.ReadyToPublish,
		FieldsComplete:  counts.Complete,
		FieldsTracked:   len(s.states.Fields),
		Goals:           s.goals.Snapshot(),
		Fields:          s.states.Snapshot(),
		Listing:         s.listing,
	}
	for _, name := range s.states.SortedNames() {
		res.Conflicts = append(res.Conflicts, s.conflicts[name]...)
	}
	res.ConflictCount = len(res.Conflicts)
	return res
}
