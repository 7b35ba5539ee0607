package loot

import (
	"fmt"
	"slices"
	"strings"
)

// PickupType is the auto-pickup strategy cycled from the popup. Its effect
// on autoexplore is owned by the host.
type PickupType int

const (
	// PickupManual picks up only explicitly marked items.
	PickupManual PickupType = iota
	// PickupValuable also picks up items above the value threshold.
	PickupValuable
	// PickupAll picks up everything takeable.
	PickupAll
)

var pickupCycle = []PickupType{PickupManual, PickupValuable, PickupAll}

// DefaultPickupType returns the pickup mode used when nothing has been persisted.
func DefaultPickupType() PickupType {
	return PickupManual
}

// NextPickupType returns the mode following t in the pickup cycle.
func NextPickupType(t PickupType) PickupType {
	i := slices.Index(pickupCycle, t)
	return pickupCycle[(i+1)%len(pickupCycle)]
}

// Valid reports whether t is a known pickup mode.
func (t PickupType) Valid() bool {
	return slices.Contains(pickupCycle, t)
}

func (t PickupType) String() string {
	switch t {
	case PickupManual:
		return "manual"
	case PickupValuable:
		return "valuable"
	case PickupAll:
		return "all"
	default:
		return fmt.Sprintf("pickup(%d)", int(t))
	}
}

// ParsePickupType converts a name produced by String back into a PickupType.
func ParsePickupType(s string) (PickupType, error) {
	for _, t := range pickupCycle {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return DefaultPickupType(), fmt.Errorf("unknown pickup type %q", s)
}
