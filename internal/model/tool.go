package model

import "strings"

// Requirement keys a tool may declare. Each key is satisfied by a concrete
// fact in the ResearchContext; a tool is eligible only when every key it
// declares is satisfied.
const (
	RequireBarcode        = "barcode"
	RequireImages         = "images"
	RequireBrandModel     = "brand_model"
	RequireCategory       = "category"
	RequireProviderPrefix = "provider:"
)

// Tool is one entry of the static research tool catalog.
type Tool struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    float64  `json:"priority" yaml:"priority"`
	CostUsd     float64  `json:"cost_usd" yaml:"cost_usd"`
	Fields      []string `json:"fields" yaml:"fields"`
	Requires    []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	MaxAttempts int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// Wildcard is the catalog marker for "any field".
const Wildcard = "*"

// CanProduce reports whether the tool can research the given field,
// either by exact declaration or by wildcard.
func (t Tool) CanProduce(field string) bool {
	for _, f := range t.Fields {
		if f == Wildcard || f == field {
			return true
		}
	}
	return false
}

// DeclaresExact reports whether the tool names the field explicitly.
// Wildcard capability does not count.
func (t Tool) DeclaresExact(field string) bool {
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// RequiresKey reports whether the tool declares the given requirement.
func (t Tool) RequiresKey(key string) bool {
	for _, r := range t.Requires {
		if r == key {
			return true
		}
	}
	return false
}

// PrereqsMet evaluates the tool's requirements against the context.
// Unknown requirement keys fail closed.
func (t Tool) PrereqsMet(rc ResearchContext) bool {
	for _, r := range t.Requires {
		switch {
		case r == RequireBarcode:
			if !rc.HasBarcode {
				return false
			}
		case r == RequireImages:
			if rc.ImageCount < 1 {
				return false
			}
		case r == RequireBrandModel:
			if !rc.HasBrand || !rc.HasModel {
				return false
			}
		case r == RequireCategory:
			if !rc.HasCategory {
				return false
			}
		case strings.HasPrefix(r, RequireProviderPrefix):
			if !rc.ProviderConfigured(strings.TrimPrefix(r, RequireProviderPrefix)) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
