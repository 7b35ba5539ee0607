package world

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Manager indexes the zones loaded at startup. The set of zones never
// changes after NewManager, so lookups need no locking; each Zone guards its
// own entities.
type Manager struct {
	byID  map[string]*Zone
	order []*Zone
	start *Zone
}

// NewManager indexes zones. The first zone is where new players start.
func NewManager(zones []*Zone) (*Manager, error) {
	m := &Manager{byID: make(map[string]*Zone, len(zones))}
	for i, z := range zones {
		if z == nil {
			return nil, fmt.Errorf("zone %d is nil", i)
		}
		if _, dup := m.byID[z.ID]; dup {
			return nil, fmt.Errorf("duplicate zone ID: %q", z.ID)
		}
		m.byID[z.ID] = z
	}
	m.order = slices.SortedFunc(func(yield func(*Zone) bool) {
		for _, z := range m.byID {
			if !yield(z) {
				return
			}
		}
	}, func(a, b *Zone) int { return cmp.Compare(a.ID, b.ID) })
	if len(zones) > 0 {
		m.start = zones[0]
	}
	return m, nil
}

// ErrNoZones is returned by Start for an empty world.
var ErrNoZones = errors.New("no zones loaded")

// Zone looks up a zone by ID.
func (m *Manager) Zone(id string) (*Zone, bool) {
	z, ok := m.byID[id]
	return z, ok
}

// StartZone is the zone new players enter, or nil for an empty world.
func (m *Manager) StartZone() *Zone { return m.start }

// Start is StartZone for callers that want an error.
func (m *Manager) Start() (*Zone, error) {
	if m.start == nil {
		return nil, ErrNoZones
	}
	return m.start, nil
}

// ZoneCount is the number of zones.
func (m *Manager) ZoneCount() int { return len(m.order) }

// AllZones lists the zones by ID. The slice is the caller's.
func (m *Manager) AllZones() []*Zone { return slices.Clone(m.order) }
