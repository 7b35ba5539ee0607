// Package ability holds a player's activated abilities: named commands the
// player can invoke from the ability list.
package ability

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Ability is one activated ability.
type Ability struct {
	ID      uuid.UUID
	Name    string
	Command string
	Class   string
	// Silent abilities are added without announcing them to the player.
	Silent bool
}

// Registry maps ability IDs to abilities. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	abilities map[uuid.UUID]Ability
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{abilities: make(map[uuid.UUID]Ability)}
}

// Add registers a and returns its newly assigned ID. Any ID already set on a
// is replaced.
//
// Postcondition: Get(id) returns a with ID set to id.
func (r *Registry) Add(a Ability) uuid.UUID {
	a.ID = uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abilities[a.ID] = a
	return a.ID
}

// Remove deletes the ability with the given ID and reports whether it existed.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.abilities[id]
	delete(r.abilities, id)
	return ok
}

// Get returns the ability with the given ID.
func (r *Registry) Get(id uuid.UUID) (Ability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.abilities[id]
	return a, ok
}

// ByCommand returns the first ability, ordered by name, bound to cmd.
func (r *Registry) ByCommand(cmd string) (Ability, bool) {
	for _, a := range r.All() {
		if a.Command == cmd {
			return a, true
		}
	}
	return Ability{}, false
}

// All returns every ability ordered by name then ID.
func (r *Registry) All() []Ability {
	r.mu.RLock()
	out := make([]Ability, 0, len(r.abilities))
	for _, a := range r.abilities {
		out = append(out, a)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Ability) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// Len returns the number of registered abilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.abilities)
}
