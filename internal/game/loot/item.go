// Package loot provides the zone loot list: candidate records, ordering
// strategies, label formatting, and the interactive selection popup.
package loot

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCandidates is returned when candidate indices are not unique and
// dense over [0, N).
var ErrInvalidCandidates = errors.New("loot: candidate indices must be unique and dense")

// ItemKind distinguishes toggleable items from liquid travel targets.
type ItemKind int

const (
	// KindTakeable is an item that can be marked for auto-pickup.
	KindTakeable ItemKind = iota
	// KindLiquid is a liquid pool; selecting it starts auto-travel.
	KindLiquid
)

// String returns the lowercase kind name.
func (k ItemKind) String() string {
	switch k {
	case KindTakeable:
		return "takeable"
	case KindLiquid:
		return "liquid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Icon is opaque presentation data for a candidate row.
type Icon struct {
	Glyph rune
	Color string
}

// CandidateSource is the world-side view of an entity that can become a
// popup candidate.
type CandidateSource interface {
	DisplayName() string
	Icon() Icon
	BaseValue() float64
	Weight() float64
}

// InventoryItem describes one selectable candidate for a single popup
// invocation.
//
// Invariant: Index is stable for the lifetime of the invocation; re-sorting
// the display never changes it.
type InventoryItem struct {
	Index  int
	Icon   Icon
	Name   string
	Value  float64
	Weight float64
	Kind   ItemKind
	IsPool bool
	Known  bool
}

// NewInventoryItem builds a candidate from src.
//
// Precondition: src must be non-nil; valueMult should be > 0.
// Postcondition: Value == src.BaseValue()*valueMult; IsPool is true iff kind is KindLiquid.
func NewInventoryItem(index int, src CandidateSource, valueMult float64, known bool, kind ItemKind) InventoryItem {
	return InventoryItem{
		Index:  index,
		Icon:   src.Icon(),
		Name:   src.DisplayName(),
		Value:  src.BaseValue() * valueMult,
		Weight: src.Weight(),
		Kind:   kind,
		IsPool: kind == KindLiquid,
		Known:  known,
	}
}

// ValueRatio returns value per pound. Weightless items with value report
// +Inf; weightless worthless items report 0.
func (it InventoryItem) ValueRatio() float64 {
	if it.Weight <= 0 {
		if it.Value > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return it.Value / it.Weight
}

// ValidateIndices checks that the Index fields of items are exactly a
// permutation of 0..len(items)-1.
//
// Postcondition: Returns nil iff indices are unique and dense.
func ValidateIndices(items []InventoryItem) error {
	seen := make([]bool, len(items))
	for pos, it := range items {
		if it.Index < 0 || it.Index >= len(items) {
			return fmt.Errorf("%w: item at %d has index %d outside [0,%d)", ErrInvalidCandidates, pos, it.Index, len(items))
		}
		if seen[it.Index] {
			return fmt.Errorf("%w: index %d repeated", ErrInvalidCandidates, it.Index)
		}
		seen[it.Index] = true
	}
	return nil
}
