package model

// ResearchMode selects a preset resource envelope for a session.
type ResearchMode string

const (
	ModeFast     ResearchMode = "fast"
	ModeStandard ResearchMode = "standard"
	ModeThorough ResearchMode = "thorough"
)

// ResearchConstraints bound one research session. The planner treats these
// as hard limits, never as targets.
type ResearchConstraints struct {
	Mode                  ResearchMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	MaxIterations         int          `json:"max_iterations" yaml:"max_iterations"`
	MaxCostUsd            float64      `json:"max_cost_usd" yaml:"max_cost_usd"`
	MaxTimeMs             int64        `json:"max_time_ms" yaml:"max_time_ms"`
	RequiredConfidence    float64      `json:"required_confidence" yaml:"required_confidence"`
	RecommendedConfidence float64      `json:"recommended_confidence,omitempty" yaml:"recommended_confidence,omitempty"`
}

// Bar returns the completion threshold for one field. Required fields hold
// to RequiredConfidence; optional fields settle for the recommended bar
// when one is set.
func (c ResearchConstraints) Bar(required bool) float64 {
	if !required && c.RecommendedConfidence > 0 {
		return c.RecommendedConfidence
	}
	return c.RequiredConfidence
}

// DefaultConstraints returns the preset envelope for a mode. Unknown modes
// get the standard envelope.
func DefaultConstraints(mode ResearchMode) ResearchConstraints {
	switch mode {
	case ModeFast:
		return ResearchConstraints{
			Mode:                  ModeFast,
			MaxIterations:         6,
			MaxCostUsd:            0.25,
			MaxTimeMs:             60_000,
			RequiredConfidence:    0.85,
			RecommendedConfidence: 0.70,
		}
	case ModeThorough:
		return ResearchConstraints{
			Mode:                  ModeThorough,
			MaxIterations:         20,
			MaxCostUsd:            2.50,
			MaxTimeMs:             420_000,
			RequiredConfidence:    0.85,
			RecommendedConfidence: 0.70,
		}
	default:
		return ResearchConstraints{
			Mode:                  ModeStandard,
			MaxIterations:         12,
			MaxCostUsd:            1.00,
			MaxTimeMs:             180_000,
			RequiredConfidence:    0.85,
			RecommendedConfidence: 0.70,
		}
	}
}

// ResearchContext captures what is already known about an item, used to
// gate tool prerequisites and to boost tools that can exploit it.
type ResearchContext struct {
	HasBarcode               bool            `json:"has_barcode"`
	HasBrand                 bool            `json:"has_brand"`
	HasModel                 bool            `json:"has_model"`
	HasCategory              bool            `json:"has_category"`
	ImageCount               int             `json:"image_count"`
	IdentificationConfidence float64         `json:"identification_confidence"`
	Providers                map[string]bool `json:"providers,omitempty"`
}

// ProviderConfigured reports whether a named provider is available.
func (c ResearchContext) ProviderConfigured(name string) bool {
	return c.Providers[name]
}

// ContextForItem derives the initial research context from item intake data.
func ContextForItem(item Item, providers map[string]bool) ResearchContext {
	return ResearchContext{
		HasBarcode:  item.Barcode != "",
		HasBrand:    item.Brand != "",
		HasModel:    item.Model != "",
		HasCategory: item.Category != "",
		ImageCount:  item.ImageCount,
		Providers:   providers,
	}
}

// ResearchTaskHistory is the planner's memory across iterations of one
// session: per-tool attempt counts, tools that stopped working, and a
// no-progress streak derived from field-state fingerprints.
type ResearchTaskHistory struct {
	AttemptsByTool        map[string]int  `json:"attempts_by_tool"`
	FailedTools           map[string]bool `json:"failed_tools"`
	ConsecutiveNoProgress int             `json:"consecutive_no_progress"`
	LastStatesHash        string          `json:"last_states_hash,omitempty"`
}

// NewTaskHistory returns an empty history.
func NewTaskHistory() *ResearchTaskHistory {
	return &ResearchTaskHistory{
		AttemptsByTool: make(map[string]int),
		FailedTools:    make(map[string]bool),
	}
}

// RecordAttempt increments the attempt count for a tool.
func (h *ResearchTaskHistory) RecordAttempt(tool string) {
	if h.AttemptsByTool == nil {
		h.AttemptsByTool = make(map[string]int)
	}
	h.AttemptsByTool[tool]++
}

// Attempts returns how many times a tool has been invoked this session.
func (h *ResearchTaskHistory) Attempts(tool string) int {
	return h.AttemptsByTool[tool]
}

// MarkFailed excludes a tool from further selection this session.
func (h *ResearchTaskHistory) MarkFailed(tool string) {
	if h.FailedTools == nil {
		h.FailedTools = make(map[string]bool)
	}
	h.FailedTools[tool] = true
}

// Failed reports whether a tool has been excluded.
func (h *ResearchTaskHistory) Failed(tool string) bool {
	return h.FailedTools[tool]
}

// ObserveStates feeds the current field-state fingerprint into the
// no-progress streak. It returns true when the fingerprint changed since
// the previous observation.
func (h *ResearchTaskHistory) ObserveStates(hash string) bool {
	if h.LastStatesHash != "" && hash == h.LastStatesHash {
		h.ConsecutiveNoProgress++
		return false
	}
	h.LastStatesHash = hash
	h.ConsecutiveNoProgress = 0
	return true
}

// ResearchTask is the planner's chosen next action.
type ResearchTask struct {
	Tool          string   `json:"tool"`
	TargetFields  []string `json:"target_fields"`
	EstimatedCost float64  `json:"estimated_cost"`
	Score         float64  `json:"score"`
}

// PrimaryField returns the field the task was selected for.
func (t ResearchTask) PrimaryField() string {
	if len(t.TargetFields) == 0 {
		return ""
	}
	return t.TargetFields[0]
}
