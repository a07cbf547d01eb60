// Package registry loads and indexes the static research tool catalog and
// the per-category field schemas.
package registry

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/resellkit/research-core/internal/model"
)

// Catalog is an indexed, concurrency-safe view of the tool catalog.
// Tools keep their load order: planner scoring is order-independent, but a
// stable order keeps logs and CLI output reproducible.
type Catalog struct {
	mu    sync.RWMutex
	tools []model.Tool
	byID  map[string]*model.Tool
}

// NewCatalog validates and indexes a tool list.
func NewCatalog(tools []model.Tool) (*Catalog, error) {
	c := &Catalog{
		tools: make([]model.Tool, len(tools)),
		byID:  make(map[string]*model.Tool, len(tools)),
	}
	copy(c.tools, tools)

	for i := range c.tools {
		t := &c.tools[i]
		if t.ID == "" {
			return nil, eris.Errorf("registry: tool %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, eris.Errorf("registry: duplicate tool id %q", t.ID)
		}
		if t.CostUsd < 0 {
			return nil, eris.Errorf("registry: tool %q has negative cost", t.ID)
		}
		if len(t.Fields) == 0 {
			return nil, eris.Errorf("registry: tool %q declares no fields", t.ID)
		}
		c.byID[t.ID] = t
	}
	return c, nil
}

// Get returns the tool with the given id, or nil.
func (c *Catalog) Get(id string) *model.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// Tools returns a copy of the catalog in load order.
func (c *Catalog) Tools() []model.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// IDs returns all tool ids, sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}
