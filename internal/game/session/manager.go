package session

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/lootlist/internal/game/ability"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/knowledge"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// outboxSize bounds the messages queued for a player between flushes.
const outboxSize = 64

// Manager holds the connected players, keyed by connection UID. Zone
// membership is read from each session, so a move never leaves a stale
// index behind.
type Manager struct {
	mu      sync.RWMutex
	players map[string]*PlayerSession
}

// NewManager returns a Manager with nobody connected.
func NewManager() *Manager {
	return &Manager{players: make(map[string]*PlayerSession)}
}

// AddPlayer connects a player at the start cell of zone and reveals what
// they can see from there.
//
// Precondition: zone and tracker are non-nil.
// Postcondition: the session has a fresh LootFinder, no abilities and an
// empty pack; a second AddPlayer for uid fails until RemovePlayer.
func (m *Manager) AddPlayer(uid, charName string, characterID int64, zone *world.Zone, tracker *knowledge.Tracker) (*PlayerSession, error) {
	switch {
	case zone == nil:
		return nil, fmt.Errorf("adding player %q: nil zone", uid)
	case tracker == nil:
		return nil, fmt.Errorf("adding player %q: nil knowledge tracker", uid)
	}
	sess := &PlayerSession{
		UID:         uid,
		CharName:    charName,
		CharacterID: characterID,
		LootFinder:  lootfinder.New(),
		Knowledge:   tracker,
		Abilities:   ability.NewRegistry(),
		Pack:        inventory.NewBackpack(inventory.DefaultBackpackSlots, inventory.DefaultBackpackWeight),
		Outbox:      NewOutbox(uid, outboxSize),
		SightRadius: DefaultSightRadius,
		zone:        zone,
		pos:         zone.Clamp(zone.Start),
	}

	m.mu.Lock()
	if _, taken := m.players[uid]; taken {
		m.mu.Unlock()
		return nil, fmt.Errorf("adding player %q: already connected", uid)
	}
	m.players[uid] = sess
	m.mu.Unlock()

	sess.Reveal()
	return sess, nil
}

// RemovePlayer disconnects uid and closes its outbox.
func (m *Manager) RemovePlayer(uid string) error {
	m.mu.Lock()
	sess, ok := m.players[uid]
	delete(m.players, uid)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("removing player %q: not found", uid)
	}
	_ = sess.Outbox.Close()
	return nil
}

// MovePlayer sends uid to the start cell of zone, dropping any autotravel
// target, and returns the zone they left.
//
// Precondition: zone is non-nil.
func (m *Manager) MovePlayer(uid string, zone *world.Zone) (string, error) {
	sess, ok := m.GetPlayer(uid)
	if !ok {
		return "", fmt.Errorf("moving player %q: not found", uid)
	}
	sess.mu.Lock()
	from := sess.zone.ID
	sess.zone = zone
	sess.pos = zone.Clamp(zone.Start)
	sess.autoTravel = ""
	sess.mu.Unlock()

	sess.Reveal()
	return from, nil
}

// GetPlayer looks up a connected player.
func (m *Manager) GetPlayer(uid string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.players[uid]
	return sess, ok
}

// PlayerCount is the number of connected players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// PlayersInZone lists the players in zoneID ordered by character name, then
// UID.
func (m *Manager) PlayersInZone(zoneID string) []*PlayerSession {
	var out []*PlayerSession
	for _, sess := range m.AllPlayers() {
		if sess.ZoneID() == zoneID {
			out = append(out, sess)
		}
	}
	slices.SortStableFunc(out, func(a, b *PlayerSession) int { return cmp.Compare(a.CharName, b.CharName) })
	return out
}

// AllPlayers lists every connected player ordered by UID.
func (m *Manager) AllPlayers() []*PlayerSession {
	m.mu.RLock()
	out := make([]*PlayerSession, 0, len(m.players))
	for _, sess := range m.players {
		out = append(out, sess)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b *PlayerSession) int { return cmp.Compare(a.UID, b.UID) })
	return out
}
