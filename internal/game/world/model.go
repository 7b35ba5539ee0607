// Package world provides the game world model: zones laid out on a grid and
// the entities placed in them.
package world

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"codeberg.org/anaseto/gruid"
)

// Zone is a rectangular area of Size cells holding entities. Entity order is
// insertion order and is stable across snapshots.
type Zone struct {
	// ID uniquely identifies this zone.
	ID string
	// Name is the display name of the zone.
	Name string
	// Description summarizes the zone's theme.
	Description string
	// Size is the zone's width (X) and height (Y) in cells.
	Size gruid.Point
	// Start is the cell where players enter the zone.
	Start gruid.Point
	// ScriptDir is the path to Lua scripts for this zone. Empty = no scripts.
	ScriptDir string
	// ScriptInstructionLimit overrides DefaultInstructionLimit for this zone's VM.
	// 0 = use DefaultInstructionLimit.
	ScriptInstructionLimit int

	mu       sync.RWMutex
	entities []*Entity
	byID     map[string]*Entity
}

// NewZone creates an empty zone.
//
// Postcondition: Returns a zone with no entities.
func NewZone(id, name string, size gruid.Point) *Zone {
	return &Zone{
		ID:   id,
		Name: name,
		Size: size,
		byID: make(map[string]*Entity),
	}
}

// Range returns the zone's cell range.
func (z *Zone) Range() gruid.Range {
	return gruid.NewRange(0, 0, z.Size.X, z.Size.Y)
}

// Contains reports whether p lies inside the zone.
func (z *Zone) Contains(p gruid.Point) bool {
	return p.In(z.Range())
}

// Clamp returns p moved to the nearest cell inside the zone.
//
// Precondition: Size has positive components.
func (z *Zone) Clamp(p gruid.Point) gruid.Point {
	p.X = min(max(p.X, 0), z.Size.X-1)
	p.Y = min(max(p.Y, 0), z.Size.Y-1)
	return p
}

// Add places e in the zone.
//
// Precondition: e is non-nil.
// Postcondition: Returns an error if e.ID is empty or already present, or
// if e lies outside the zone.
func (z *Zone) Add(e *Entity) error {
	if e.ID == "" {
		return errors.New("entity ID must not be empty")
	}
	if !z.Contains(e.Pos) {
		return fmt.Errorf("zone %q: entity %q at %v lies outside %v", z.ID, e.ID, e.Pos, z.Size)
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.byID == nil {
		z.byID = make(map[string]*Entity)
	}
	if _, ok := z.byID[e.ID]; ok {
		return fmt.Errorf("zone %q: duplicate entity ID %q", z.ID, e.ID)
	}
	z.byID[e.ID] = e
	z.entities = append(z.entities, e)
	return nil
}

// Remove takes the entity with the given ID out of the zone.
//
// Postcondition: Returns the removed entity, or nil if absent.
func (z *Zone) Remove(id string) *Entity {
	z.mu.Lock()
	defer z.mu.Unlock()
	e, ok := z.byID[id]
	if !ok {
		return nil
	}
	delete(z.byID, id)
	z.entities = slices.DeleteFunc(z.entities, func(x *Entity) bool { return x == e })
	return e
}

// Entity returns the entity with the given ID.
func (z *Zone) Entity(id string) (*Entity, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	e, ok := z.byID[id]
	return e, ok
}

// Entities returns a snapshot of the zone's entities in insertion order.
func (z *Zone) Entities() []*Entity {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return slices.Clone(z.entities)
}

// EntitiesAt returns the entities standing on p in insertion order.
func (z *Zone) EntitiesAt(p gruid.Point) []*Entity {
	z.mu.RLock()
	defer z.mu.RUnlock()
	var out []*Entity
	for _, e := range z.entities {
		if e.Pos == p {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks zone invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone ID must not be empty")
	}
	if z.Name == "" {
		return fmt.Errorf("zone %q: name must not be empty", z.ID)
	}
	if z.Size.X <= 0 || z.Size.Y <= 0 {
		return fmt.Errorf("zone %q: size %v must be positive", z.ID, z.Size)
	}
	if !z.Contains(z.Start) {
		return fmt.Errorf("zone %q: start %v lies outside the zone", z.ID, z.Start)
	}
	return nil
}

// CellFromDirectionOf returns the cell adjacent to target on the side facing
// from. When from equals target, target is returned.
func CellFromDirectionOf(target, from gruid.Point) gruid.Point {
	return target.Add(unitDir(from.Sub(target)))
}

// unitDir reduces a delta to one of the eight compass steps.
func unitDir(p gruid.Point) gruid.Point {
	if p.X != 0 {
		p.X /= abs(p.X)
	}
	if p.Y != 0 {
		p.Y /= abs(p.Y)
	}
	return p
}

func abs(i int) int {
	if i < 0 {
		i = -i
	}
	return i
}
