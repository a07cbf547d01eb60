package model

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"
)

// FieldStatus is the research lifecycle state of a single field.
type FieldStatus string

const (
	FieldPending      FieldStatus = "pending"
	FieldResearching  FieldStatus = "researching"
	FieldComplete     FieldStatus = "complete"
	FieldFailed       FieldStatus = "failed"
	FieldUserRequired FieldStatus = "user_required"
)

// Terminal reports whether the field needs no further automated research.
func (s FieldStatus) Terminal() bool {
	return s == FieldComplete || s == FieldFailed || s == FieldUserRequired
}

// FieldDataType is the expected value shape of a field.
type FieldDataType string

const (
	TypeString  FieldDataType = "string"
	TypeNumber  FieldDataType = "number"
	TypeBoolean FieldDataType = "boolean"
	TypeArray   FieldDataType = "array"
)

// FieldState tracks one field of one item through the research loop.
type FieldState struct {
	Name       string               `json:"name"`
	Value      any                  `json:"value,omitempty"`
	Confidence FieldConfidenceScore `json:"confidence"`
	DataType   FieldDataType        `json:"data_type"`
	Required   bool                 `json:"required"`
	RequiredBy GoalType             `json:"required_by"`
	Attempts   int                  `json:"attempts"`
	Status     FieldStatus          `json:"status"`
}

// StatusCounts aggregates field statuses for an item.
type StatusCounts struct {
	Pending      int `json:"pending"`
	Researching  int `json:"researching"`
	Complete     int `json:"complete"`
	Failed       int `json:"failed"`
	UserRequired int `json:"user_required"`
}

// ItemFieldStates is the full research state of one item: every tracked
// field plus the cumulative budget counters the planner reads.
type ItemFieldStates struct {
	ItemID     string                 `json:"item_id"`
	Fields     map[string]*FieldState `json:"fields"`
	Iterations int                    `json:"iterations"`
	CostUsd    float64                `json:"cost_usd"`
	ElapsedMs  int64                  `json:"elapsed_ms"`

	CompletionScore float64 `json:"completion_score"`
	ReadyToPublish  bool    `json:"ready_to_publish"`
}

// NewItemFieldStates seeds field states for an item from a category schema.
// All fields start pending with zero confidence.
func NewItemFieldStates(itemID string, specs []FieldSpec) *ItemFieldStates {
	s := &ItemFieldStates{
		ItemID: itemID,
		Fields: make(map[string]*FieldState, len(specs)),
	}
	for _, spec := range specs {
		s.Fields[spec.Name] = &FieldState{
			Name:       spec.Name,
			DataType:   spec.DataType,
			Required:   spec.Required,
			RequiredBy: spec.RequiredBy,
			Status:     FieldPending,
		}
	}
	return s
}

// Field returns the named field state, or nil if the item does not track it.
func (s *ItemFieldStates) Field(name string) *FieldState {
	return s.Fields[name]
}

// SortedNames returns the tracked field names in lexical order.
func (s *ItemFieldStates) SortedNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts tallies field statuses.
func (s *ItemFieldStates) Counts() StatusCounts {
	var c StatusCounts
	for _, f := range s.Fields {
		switch f.Status {
		case FieldPending:
			c.Pending++
		case FieldResearching:
			c.Researching++
		case FieldComplete:
			c.Complete++
		case FieldFailed:
			c.Failed++
		case FieldUserRequired:
			c.UserRequired++
		}
	}
	return c
}

// Recompute refreshes CompletionScore and ReadyToPublish from field
// statuses. Required fields weigh double; an item is ready to publish only
// when every required field is complete.
func (s *ItemFieldStates) Recompute() {
	var got, total float64
	ready := true
	for _, f := range s.Fields {
		weight := 1.0
		if f.Required {
			weight = 2.0
			if f.Status != FieldComplete {
				ready = false
			}
		}
		total += weight
		switch f.Status {
		case FieldComplete:
			got += weight
		case FieldUserRequired:
			got += weight * 0.5
		}
	}
	if total == 0 {
		s.CompletionScore = 0
		s.ReadyToPublish = false
		return
	}
	s.CompletionScore = got / total
	s.ReadyToPublish = ready
}

// Hash returns a stable fingerprint of field values, statuses, and
// confidences. Attempt counters are deliberately excluded so that a tool
// call which changed nothing does not register as progress.
func (s *ItemFieldStates) Hash() string {
	h := fnv.New64a()
	for _, name := range s.SortedNames() {
		f := s.Fields[name]
		fmt.Fprintf(h, "%s|%s|%.6f|%v\n", f.Name, f.Status, f.Confidence.Value, f.Value)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ViewForGoal returns a shallow view of s containing only fields owned by
// the given goal. Field states are shared with the receiver; budget
// counters are copied so the view reads the same totals.
func (s *ItemFieldStates) ViewForGoal(gt GoalType) *ItemFieldStates {
	v := &ItemFieldStates{
		ItemID:     s.ItemID,
		Fields:     make(map[string]*FieldState),
		Iterations: s.Iterations,
		CostUsd:    s.CostUsd,
		ElapsedMs:  s.ElapsedMs,
	}
	for name, f := range s.Fields {
		if f.RequiredBy == gt {
			v.Fields[name] = f
		}
	}
	return v
}

// Snapshot returns a persistable view of every field, sorted by name.
func (s *ItemFieldStates) Snapshot() []FieldSnapshot {
	out := make([]FieldSnapshot, 0, len(s.Fields))
	for _, name := range s.SortedNames() {
		f := s.Fields[name]
		out = append(out, FieldSnapshot{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence.Value,
			Status:     f.Status,
			Attempts:   f.Attempts,
			Sources:    len(f.Confidence.Sources),
			Required:   f.Required,
		})
	}
	return out
}

// FieldSnapshot is the stored per-field summary of a finished run.
type FieldSnapshot struct {
	Name       string      `json:"name"`
	Value      any         `json:"value,omitempty"`
	Confidence float64     `json:"confidence"`
	Status     FieldStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	Sources    int         `json:"sources"`
	Required   bool        `json:"required"`
}

// FieldSpec declares one field a category schema tracks.
type FieldSpec struct {
	Name       string        `json:"name" yaml:"name"`
	DataType   FieldDataType `json:"data_type" yaml:"data_type"`
	Required   bool          `json:"required" yaml:"required"`
	RequiredBy GoalType      `json:"required_by" yaml:"required_by"`
}

// CategorySchema lists the fields tracked for items of one category.
type CategorySchema struct {
	Category string      `json:"category" yaml:"category"`
	Fields   []FieldSpec `json:"fields" yaml:"fields"`
}

// AddSource appends an observation to the field's evidence list.
func (f *FieldState) AddSource(src FieldDataSource) {
	f.Confidence.Sources = append(f.Confidence.Sources, src)
}

// ApplyValidation writes a cross-validation outcome back onto the field.
func (f *FieldState) ApplyValidation(cv CrossValidatedField, at time.Time) {
	f.Value = cv.Value
	f.Confidence.Value = cv.CrossValidatedConfidence
	f.Confidence.LastUpdated = at
}
