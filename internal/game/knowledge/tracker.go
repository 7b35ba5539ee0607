// Package knowledge tracks what a player has seen and which item values the
// player understands.
package knowledge

import (
	"sync"

	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// OverrideFunc lets zone scripts decide whether an item definition is known.
// ok is false when the override has no opinion.
type OverrideFunc func(defID string) (known bool, ok bool)

// Option configures a Tracker.
type Option func(*Tracker)

// WithOverride installs fn as the item knowledge override.
func WithOverride(fn OverrideFunc) Option {
	return func(t *Tracker) { t.override = fn }
}

// Tracker records one player's item knowledge and sightings. It is safe for
// concurrent use.
type Tracker struct {
	reg      *inventory.Registry
	override OverrideFunc

	mu      sync.RWMutex
	items   map[string]bool
	liquids map[string]bool
	seen    map[string]bool
}

// NewTracker creates a Tracker that consults reg for default knowledge.
//
// Precondition: reg must be non-nil.
func NewTracker(reg *inventory.Registry, opts ...Option) *Tracker {
	t := &Tracker{
		reg:     reg,
		items:   make(map[string]bool),
		liquids: make(map[string]bool),
		seen:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsItemKnown reports whether the player understands e's value.
//
// Postcondition: Items with no value are always known. Learned definitions
// are always known. Otherwise the override decides, then the definition's
// default.
func (t *Tracker) IsItemKnown(e *world.Entity) bool {
	if e.Value <= 0 {
		return true
	}
	t.mu.RLock()
	learned := t.items[e.DefID]
	t.mu.RUnlock()
	if learned {
		return true
	}
	if t.override != nil {
		if known, ok := t.override(e.DefID); ok {
			return known
		}
	}
	def, ok := t.reg.Item(e.DefID)
	if !ok {
		return true
	}
	return def.KnownByDefault()
}

// IsLiquidKnown reports whether the player understands the value of lv.
func (t *Tracker) IsLiquidKnown(lv *world.LiquidVolume) bool {
	if lv == nil {
		return true
	}
	t.mu.RLock()
	learned := t.liquids[lv.LiquidID]
	t.mu.RUnlock()
	if learned {
		return true
	}
	def, ok := t.reg.Liquid(lv.LiquidID)
	return !ok || !def.Exotic
}

// LearnItem marks the item definition as known.
func (t *Tracker) LearnItem(defID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[defID] = true
}

// LearnLiquid marks the liquid as known.
func (t *Tracker) LearnLiquid(liquidID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.liquids[liquidID] = true
}

// MarkSeen records that the player has seen e.
func (t *Tracker) MarkSeen(e *world.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[e.ID] = true
}

// SeeAll records every entity in entities as seen.
func (t *Tracker) SeeAll(entities []*world.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range entities {
		t.seen[e.ID] = true
	}
}

// Seen reports whether the player has seen e.
func (t *Tracker) Seen(e *world.Entity) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seen[e.ID]
}
