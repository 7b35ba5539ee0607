package world

import (
	"maps"
	"slices"
	"sync"

	"codeberg.org/anaseto/gruid"
)

// LiquidVolume describes liquid held by an entity.
type LiquidVolume struct {
	// LiquidID references an inventory.LiquidDef.
	LiquidID string
	// Volume is the amount of liquid in drams.
	Volume int
	// Pool is true for open standing liquid that can be walked to.
	Pool bool
}

// Entity is an object placed in a zone. Identity and static fields are set
// at load time and never change; parts and integer properties are mutable
// and guarded by an internal lock.
type Entity struct {
	ID       string
	Name     string
	DefID    string
	Glyph    rune
	Color    string
	Pos      gruid.Point
	Takeable bool
	// Carried is true when the entity sits inside another object's inventory.
	Carried bool
	Value   float64
	Weight  float64
	Liquid  *LiquidVolume

	mu       sync.RWMutex
	parts    map[string]struct{}
	intProps map[string]int
}

// HasPart reports whether the entity carries the named part.
func (e *Entity) HasPart(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.parts[name]
	return ok
}

// AddPart attaches the named part. Adding an existing part is a no-op.
//
// Postcondition: HasPart(name) is true.
func (e *Entity) AddPart(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parts == nil {
		e.parts = make(map[string]struct{})
	}
	e.parts[name] = struct{}{}
}

// RemovePart detaches the named part and reports whether it was present.
func (e *Entity) RemovePart(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.parts[name]
	delete(e.parts, name)
	return ok
}

// Parts returns the attached part names in sorted order.
func (e *Entity) Parts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.parts))
}

// IntProperty returns the named integer property and whether it is set.
func (e *Entity) IntProperty(name string) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.intProps[name]
	return v, ok
}

// SetIntProperty sets the named integer property.
func (e *Entity) SetIntProperty(name string, v int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.intProps == nil {
		e.intProps = make(map[string]int)
	}
	e.intProps[name] = v
}

// RemoveIntProperty clears the named integer property.
func (e *Entity) RemoveIntProperty(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.intProps, name)
}

// IsPool reports whether the entity is an open pool holding some liquid.
func (e *Entity) IsPool() bool {
	return e.Liquid != nil && e.Liquid.Pool && e.Liquid.Volume > 0
}
