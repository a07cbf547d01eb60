package registry

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/resellkit/research-core/internal/model"
)

// DefaultCategory is the schema used when an item's category has no
// dedicated schema.
const DefaultCategory = "default"

// SchemaSet indexes category field schemas by normalized category name.
type SchemaSet struct {
	byCategory map[string]model.CategorySchema
}

// NewSchemaSet validates and indexes category schemas. A "default"
// category must be present: every item has to resolve to some schema.
func NewSchemaSet(schemas []model.CategorySchema) (*SchemaSet, error) {
	s := &SchemaSet{byCategory: make(map[string]model.CategorySchema, len(schemas))}

	for _, cs := range schemas {
		key := normalizeCategory(cs.Category)
		if key == "" {
			return nil, eris.New("registry: category schema with empty category")
		}
		if _, dup := s.byCategory[key]; dup {
			return nil, eris.Errorf("registry: duplicate category schema %q", key)
		}

		seen := make(map[string]bool, len(cs.Fields))
		for i := range cs.Fields {
			f := &cs.Fields[i]
			if f.Name == "" {
				return nil, eris.Errorf("registry: category %q has a nameless field", key)
			}
			if seen[f.Name] {
				return nil, eris.Errorf("registry: category %q declares field %q twice", key, f.Name)
			}
			seen[f.Name] = true
			if f.DataType == "" {
				f.DataType = model.TypeString
			}
			if !validGoalType(f.RequiredBy) {
				return nil, eris.Errorf("registry: category %q field %q has unknown goal %q", key, f.Name, f.RequiredBy)
			}
		}
		s.byCategory[key] = cs
	}

	if _, ok := s.byCategory[DefaultCategory]; !ok {
		return nil, eris.New("registry: schema set has no default category")
	}
	return s, nil
}

// ForCategory resolves the schema for an item category, falling back to
// the default schema for unknown or empty categories.
func (s *SchemaSet) ForCategory(category string) model.CategorySchema {
	if cs, ok := s.byCategory[normalizeCategory(category)]; ok {
		return cs
	}
	return s.byCategory[DefaultCategory]
}

// Categories lists the known category names, sorted.
func (s *SchemaSet) Categories() []string {
	out := make([]string, 0, len(s.byCategory))
	for key := range s.byCategory {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func validGoalType(t model.GoalType) bool {
	switch t {
	case model.GoalIdentifyProduct, model.GoalGatherMetadata, model.GoalResearchMarket, model.GoalAssembleListing:
		return true
	}
	return false
}
