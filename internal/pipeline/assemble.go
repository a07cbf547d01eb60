package pipeline

import (
	"time"

	"github.com/resellkit/research-core/internal/model"
)

// assemblyAnchors are the fields a listing cannot ship without. Everything
// else researched lands in the specs map.
var assemblyAnchors = map[string]bool{
	"title":        true,
	"brand":        true,
	"model":        true,
	"description":  true,
	"category":     true,
	"market_price": true,
}

// AssembleListing builds a marketplace listing from the fields that
// finished research. It needs a title (or brand+model to compose one) and
// a market price; without those it returns nil and the caller records an
// aborted assembly.
func AssembleListing(item model.Item, states *model.ItemFieldStates, now time.Time) *model.Listing {
	title := completeString(states, "title")
	brand := completeString(states, "brand")
	modelName := completeString(states, "model")
	if title == "" {
		if brand == "" || modelName == "" {
			return nil
		}
		title = brand + " " + modelName
	}
	price := completeNumber(states, "market_price")
	if price <= 0 {
		return nil
	}

	listing := &model.Listing{
		Title:       title,
		Description: completeString(states, "description"),
		Price:       price,
		Category:    completeString(states, "category"),
		Condition:   item.Condition,
		Brand:       brand,
		Model:       modelName,
		Barcode:     item.Barcode,
		AssembledAt: now,
	}
	if listing.Category == "" {
		listing.Category = item.Category
	}

	// Remaining complete fields ride along as listing specs.
	for _, name := range states.SortedNames() {
		f := states.Field(name)
		if f == nil || f.Status != model.FieldComplete || assemblyAnchors[name] {
			continue
		}
		if f.Value == nil {
			continue
		}
		if listing.Specs == nil {
			listing.Specs = make(map[string]any)
		}
		listing.Specs[name] = f.Value
	}
	return listing
}

func completeString(states *model.ItemFieldStates, name string) string {
	f := states.Field(name)
	if f == nil || f.Status != model.FieldComplete {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}

func completeNumber(states *model.ItemFieldStates, name string) float64 {
	f := states.Field(name)
	if f == nil || f.Status != model.FieldComplete {
		return 0
	}
	switch v := f.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
