package inventory

import (
	"fmt"
	"maps"
	"slices"
)

// Registry indexes item and liquid definitions by ID. Item and liquid IDs
// live in separate namespaces. It is filled once at startup and read-only
// afterwards.
type Registry struct {
	items   map[string]*ItemDef
	liquids map[string]*LiquidDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		items:   make(map[string]*ItemDef),
		liquids: make(map[string]*LiquidDef),
	}
}

// LoadRegistry loads itemsDir and liquidsDir into a new Registry.
func LoadRegistry(itemsDir, liquidsDir string) (*Registry, error) {
	items, err := LoadItems(itemsDir)
	if err != nil {
		return nil, err
	}
	liquids, err := LoadLiquids(liquidsDir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range items {
		if err := r.RegisterItem(d); err != nil {
			return nil, err
		}
	}
	for _, d := range liquids {
		if err := r.RegisterLiquid(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// add stores def under id unless id is taken.
func add[D any](index map[string]*D, kind, id string, def *D) error {
	if _, taken := index[id]; taken {
		return fmt.Errorf("inventory: duplicate %s ID %q", kind, id)
	}
	index[id] = def
	return nil
}

// sortedByID lists index ordered by id.
func sortedByID[D any](index map[string]*D) []*D {
	ids := slices.Sorted(maps.Keys(index))
	out := make([]*D, len(ids))
	for i, id := range ids {
		out[i] = index[id]
	}
	return out
}

// RegisterItem adds d. A second definition with the same ID is an error.
//
// Precondition: d is non-nil.
func (r *Registry) RegisterItem(d *ItemDef) error { return add(r.items, "item", d.ID, d) }

// RegisterLiquid adds d. A second definition with the same ID is an error.
//
// Precondition: d is non-nil.
func (r *Registry) RegisterLiquid(d *LiquidDef) error { return add(r.liquids, "liquid", d.ID, d) }

// Item looks up an item definition.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Liquid looks up a liquid definition.
func (r *Registry) Liquid(id string) (*LiquidDef, bool) {
	d, ok := r.liquids[id]
	return d, ok
}

// AllItems lists the item definitions by ID.
func (r *Registry) AllItems() []*ItemDef { return sortedByID(r.items) }

// AllLiquids lists the liquid definitions by ID.
func (r *Registry) AllLiquids() []*LiquidDef { return sortedByID(r.liquids) }
