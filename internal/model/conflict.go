package model

import "time"

// ConflictSeverity classifies how far apart two disagreeing values are.
type ConflictSeverity string

const (
	SeverityMinor ConflictSeverity = "minor"
	SeverityMajor ConflictSeverity = "major"
)

// Conflict records a disagreement between two observations of the same
// field from different independence groups.
type Conflict struct {
	FieldName string            `json:"field_name"`
	Value1    any               `json:"value_1"`
	Source1   SourceType        `json:"source_1"`
	Group1    IndependenceGroup `json:"group_1"`
	Value2    any               `json:"value_2"`
	Source2   SourceType        `json:"source_2"`
	Group2    IndependenceGroup `json:"group_2"`
	Severity  ConflictSeverity  `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
}

// CrossValidatedField is the outcome of cross-validating one field across
// all of its observations.
type CrossValidatedField struct {
	FieldName                string     `json:"field_name"`
	Value                    any        `json:"value"`
	BaseConfidence           float64    `json:"base_confidence"`
	CrossValidatedConfidence float64    `json:"cross_validated_confidence"`
	IndependentGroupCount    int        `json:"independent_group_count"`
	AgreementScore           float64    `json:"agreement_score"`
	CorroborationMultiplier  float64    `json:"corroboration_multiplier"`
	Conflicts                []Conflict `json:"conflicts,omitempty"`
}
