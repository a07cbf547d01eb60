package model

import "time"

// RunStatus is the lifecycle state of a persisted research run.
type RunStatus string

const (
	RunStatusResearching RunStatus = "researching"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// StopReason explains why the research loop halted.
type StopReason string

const (
	StopPipelineComplete StopReason = "pipeline_complete"
	StopIterationLimit   StopReason = "iteration_limit"
	StopNoProgress       StopReason = "no_progress"
	StopBudgetExhausted  StopReason = "budget_exhausted"
	StopTimeLimit        StopReason = "time_limit"
	StopFieldsExhausted  StopReason = "fields_exhausted"
	StopCanceled         StopReason = "canceled"
)

// ResearchRun is one persisted research session for one item.
type ResearchRun struct {
	ID        string     `json:"id"`
	Item      Item       `json:"item"`
	Status    RunStatus  `json:"status"`
	Error     string     `json:"error,omitempty"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult is the final outcome of a research session.
type RunResult struct {
	FinalPhase      string          `json:"final_phase"`
	StopReason      StopReason      `json:"stop_reason"`
	Iterations      int             `json:"iterations"`
	CostUsd         float64         `json:"cost_usd"`
	ElapsedMs       int64           `json:"elapsed_ms"`
	CompletionScore float64         `json:"completion_score"`
	ReadyToPublish  bool            `json:"ready_to_publish"`
	FieldsComplete  int             `json:"fields_complete"`
	FieldsTracked   int             `json:"fields_tracked"`
	ConflictCount   int             `json:"conflict_count"`
	Goals           []ResearchGoal  `json:"goals"`
	Fields          []FieldSnapshot `json:"fields"`
	Conflicts       []Conflict      `json:"conflicts,omitempty"`
	Listing         *Listing        `json:"listing,omitempty"`
}
