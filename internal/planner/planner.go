// Package planner selects the next research action for an item under hard
// resource bounds. It is pure decision logic: the planner inspects state
// and proposes one task, it never executes anything and never errors.
package planner

import (
	"github.com/resellkit/research-core/internal/model"
)

// Config tunes the planner's stop conditions and exclusion caps.
type Config struct {
	// MaxConsecutiveNoProgress stops the loop after this many iterations
	// without any field changing.
	MaxConsecutiveNoProgress int `json:"max_consecutive_no_progress" yaml:"max_consecutive_no_progress"`
	// CostEpsilon is the remaining budget below which planning stops.
	CostEpsilon float64 `json:"cost_epsilon" yaml:"cost_epsilon"`
	// PerToolAttemptCap bounds invocations of a single tool per session.
	// A tool's own MaxAttempts overrides it.
	PerToolAttemptCap int `json:"per_tool_attempt_cap" yaml:"per_tool_attempt_cap"`
	// MaxFieldAttempts and LowConfidenceCutoff together write a field off:
	// a field at or past the attempt cap that never climbed above the
	// cutoff is not worth more spend.
	MaxFieldAttempts    int     `json:"max_field_attempts" yaml:"max_field_attempts"`
	LowConfidenceCutoff float64 `json:"low_confidence_cutoff" yaml:"low_confidence_cutoff"`
}

// DefaultConfig returns the stock planner tuning.
func DefaultConfig() Config {
	return Config{
		MaxConsecutiveNoProgress: 3,
		CostEpsilon:              0.01,
		PerToolAttemptCap:        3,
		MaxFieldAttempts:         3,
		LowConfidenceCutoff:      0.3,
	}
}

// Planner chooses next actions. Zero-valued config fields fall back to
// defaults at construction.
type Planner struct {
	cfg Config
}

// New builds a planner, filling config gaps from DefaultConfig.
func New(cfg Config) *Planner {
	def := DefaultConfig()
	if cfg.MaxConsecutiveNoProgress <= 0 {
		cfg.MaxConsecutiveNoProgress = def.MaxConsecutiveNoProgress
	}
	if cfg.CostEpsilon <= 0 {
		cfg.CostEpsilon = def.CostEpsilon
	}
	if cfg.PerToolAttemptCap <= 0 {
		cfg.PerToolAttemptCap = def.PerToolAttemptCap
	}
	if cfg.MaxFieldAttempts <= 0 {
		cfg.MaxFieldAttempts = def.MaxFieldAttempts
	}
	if cfg.LowConfidenceCutoff <= 0 {
		cfg.LowConfidenceCutoff = def.LowConfidenceCutoff
	}
	return &Planner{cfg: cfg}
}

// Input is everything one planning decision may look at.
type Input struct {
	States      *model.ItemFieldStates
	Constraints model.ResearchConstraints
	Context     model.ResearchContext
	History     *model.ResearchTaskHistory
	Catalog     []model.Tool
}

// PlanNext returns the next task, or a stop reason when the session should
// halt. Exactly one of the two is set.
//
// Stop conditions are checked in strict order: iteration limit, then the
// no-progress streak, then the cost budget, then field exhaustion. The
// ordering is observable through the returned reason and must not change.
func (p *Planner) PlanNext(in Input) (*model.ResearchTask, model.StopReason) {
	if in.States == nil || in.History == nil {
		return nil, model.StopFieldsExhausted
	}

	if in.States.Iterations >= in.Constraints.MaxIterations {
		return nil, model.StopIterationLimit
	}
	if in.History.ConsecutiveNoProgress >= p.cfg.MaxConsecutiveNoProgress {
		return nil, model.StopNoProgress
	}

	remaining := in.Constraints.MaxCostUsd - in.States.CostUsd
	if remaining < p.cfg.CostEpsilon {
		return nil, model.StopBudgetExhausted
	}

	best, ok := p.bestCandidate(in, remaining)
	if !ok {
		return nil, model.StopFieldsExhausted
	}

	return &model.ResearchTask{
		Tool:          best.tool.ID,
		TargetFields:  p.targetFields(in, best),
		EstimatedCost: best.tool.CostUsd,
		Score:         best.score,
	}, ""
}

// researchable reports whether a field still merits spend: not terminal,
// and not written off as repeatedly attempted at hopeless confidence.
func (p *Planner) researchable(f *model.FieldState) bool {
	if f.Status.Terminal() {
		return false
	}
	if f.Attempts >= p.cfg.MaxFieldAttempts && f.Confidence.Value < p.cfg.LowConfidenceCutoff {
		return false
	}
	return true
}

// eligible reports whether a tool may be invoked at all this iteration.
func (p *Planner) eligible(t model.Tool, in Input, remaining float64) bool {
	if in.History.Failed(t.ID) {
		return false
	}
	limit := t.MaxAttempts
	if limit <= 0 {
		limit = p.cfg.PerToolAttemptCap
	}
	if in.History.Attempts(t.ID) >= limit {
		return false
	}
	if t.CostUsd > remaining {
		return false
	}
	return t.PrereqsMet(in.Context)
}
