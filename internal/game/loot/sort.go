package loot

import (
	"fmt"
	"slices"
	"strings"
)

// SortType selects the ordering key of the popup list.
type SortType int

const (
	// SortValue orders by monetary value, highest first.
	SortValue SortType = iota
	// SortWeight orders by weight, heaviest first.
	SortWeight
)

// sortCycle is the fixed order in which the sort control advances.
var sortCycle = []SortType{SortValue, SortWeight}

// DefaultSortType returns the sort mode used when nothing has been persisted.
func DefaultSortType() SortType {
	return SortValue
}

// NextSortType returns the mode following t in the sort cycle. Unknown
// values restart the cycle.
func NextSortType(t SortType) SortType {
	i := slices.Index(sortCycle, t)
	return sortCycle[(i+1)%len(sortCycle)]
}

// Valid reports whether t is a known sort mode.
func (t SortType) Valid() bool {
	return slices.Contains(sortCycle, t)
}

// String returns the display name of the sort mode.
func (t SortType) String() string {
	switch t {
	case SortValue:
		return "value"
	case SortWeight:
		return "weight"
	default:
		return fmt.Sprintf("sort(%d)", int(t))
	}
}

// ParseSortType converts a name produced by String back into a SortType.
//
// Postcondition: Returns a valid SortType or a non-nil error.
func ParseSortType(s string) (SortType, error) {
	for _, t := range sortCycle {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return DefaultSortType(), fmt.Errorf("unknown sort type %q", s)
}

// sortKey returns the comparison key of it under t. Liquids have no value
// key, so they sink below priced items when sorting by value.
func sortKey(it InventoryItem, t SortType) float64 {
	switch t {
	case SortWeight:
		return it.Weight
	default:
		if it.IsPool {
			return 0
		}
		return it.Value
	}
}

// SortDescending returns a new slice holding items ordered by t's key,
// highest first. Equal keys keep their input order.
//
// Postcondition: items is not modified; len(result) == len(items).
func SortDescending(items []InventoryItem, t SortType) []InventoryItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b InventoryItem) int {
		ka, kb := sortKey(a, t), sortKey(b, t)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		default:
			return 0
		}
	})
	return out
}
