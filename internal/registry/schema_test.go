package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/model"
)

func defaultSchema() model.CategorySchema {
	return model.CategorySchema{
		Category: "default",
		Fields: []model.FieldSpec{
			{Name: "brand", Required: true, RequiredBy: model.GoalIdentifyProduct},
			{Name: "market_price", DataType: model.TypeNumber, Required: true, RequiredBy: model.GoalResearchMarket},
		},
	}
}

func TestNewSchemaSet_RequiresDefault(t *testing.T) {
	_, err := NewSchemaSet([]model.CategorySchema{
		{Category: "cameras", Fields: []model.FieldSpec{
			{Name: "brand", RequiredBy: model.GoalIdentifyProduct},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default category")
}

func TestNewSchemaSet_Validation(t *testing.T) {
	tests := []struct {
		name    string
		schema  model.CategorySchema
		wantErr string
	}{
		{"empty category", model.CategorySchema{}, "empty category"},
		{"nameless field", model.CategorySchema{
			Category: "x",
			Fields:   []model.FieldSpec{{RequiredBy: model.GoalIdentifyProduct}},
		}, "nameless field"},
		{"duplicate field", model.CategorySchema{
			Category: "x",
			Fields: []model.FieldSpec{
				{Name: "brand", RequiredBy: model.GoalIdentifyProduct},
				{Name: "brand", RequiredBy: model.GoalIdentifyProduct},
			},
		}, "twice"},
		{"unknown goal", model.CategorySchema{
			Category: "x",
			Fields:   []model.FieldSpec{{Name: "brand", RequiredBy: model.GoalType("SOLVE_WORLD_HUNGER")}},
		}, "unknown goal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchemaSet([]model.CategorySchema{defaultSchema(), tt.schema})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaSet_ForCategory(t *testing.T) {
	set, err := NewSchemaSet([]model.CategorySchema{
		defaultSchema(),
		{Category: "Cameras", Fields: []model.FieldSpec{
			{Name: "serial_number", RequiredBy: model.GoalIdentifyProduct},
		}},
	})
	require.NoError(t, err)

	// Category matching is case- and whitespace-insensitive.
	assert.Equal(t, "Cameras", set.ForCategory("  CAMERAS ").Category)
	assert.Equal(t, "default", set.ForCategory("typewriters").Category)
	assert.Equal(t, "default", set.ForCategory("").Category)
	assert.Equal(t, []string{"cameras", "default"}, set.Categories())
}

func TestSchemaSet_DataTypeDefaultsToString(t *testing.T) {
	set, err := NewSchemaSet([]model.CategorySchema{defaultSchema()})
	require.NoError(t, err)

	cs := set.ForCategory("default")
	assert.Equal(t, model.TypeString, cs.Fields[0].DataType)
	assert.Equal(t, model.TypeNumber, cs.Fields[1].DataType)
}

func TestLoadSchemas_Defaults(t *testing.T) {
	set, err := LoadSchemas("")
	require.NoError(t, err)

	def := set.ForCategory("default")
	require.NotEmpty(t, def.Fields)

	cameras := set.ForCategory("cameras")
	assert.Equal(t, "cameras", cameras.Category)

	// Every built-in category tracks the three goal-critical anchors.
	for _, cat := range set.Categories() {
		cs := set.ForCategory(cat)
		names := make(map[string]model.FieldSpec, len(cs.Fields))
		for _, f := range cs.Fields {
			names[f.Name] = f
		}
		require.Contains(t, names, "brand", "category %s", cat)
		require.Contains(t, names, "market_price", "category %s", cat)
		assert.True(t, names["market_price"].Required, "category %s", cat)
		assert.Equal(t, model.GoalResearchMarket, names["market_price"].RequiredBy, "category %s", cat)
	}
}
