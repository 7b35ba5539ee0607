package session

import (
	"errors"
	"fmt"
	"sync"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"

	"github.com/cory-johannsen/lootlist/internal/game/ability"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/knowledge"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// DefaultSightRadius is how far, in Chebyshev distance, a player sees.
const DefaultSightRadius = 8

// ErrNoAutoTravel is returned by FollowAutoTravel when no target is set.
var ErrNoAutoTravel = errors.New("no autotravel target")

// PlayerSession tracks a connected player's state.
//
// Position, zone and the travel fields are guarded by an internal mutex; the
// loot finder, knowledge and abilities carry their own synchronization or
// are only touched from the player's command goroutine.
type PlayerSession struct {
	// UID is the unique player identifier.
	UID string
	// CharName is the character display name shown in-game.
	CharName string
	// CharacterID is the database ID used to persist loot finder state.
	CharacterID int64
	// LootFinder holds the player's loot list modes and ability handle.
	LootFinder *lootfinder.LootFinder
	// Knowledge records what the player has seen and identified.
	Knowledge *knowledge.Tracker
	// Abilities is the player's ability list.
	Abilities *ability.Registry
	// Pack holds the items autoexplore picked up.
	Pack *inventory.Backpack
	// Outbox receives messages for the player.
	Outbox *Outbox
	// SightRadius bounds Reveal.
	SightRadius int

	mu         sync.Mutex
	zone       *world.Zone
	pos        gruid.Point
	autoTravel string
	skipTurn   bool
}

// Name returns the character name.
func (s *PlayerSession) Name() string { return s.CharName }

// ZoneID returns the current zone ID.
func (s *PlayerSession) ZoneID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zone.ID
}

// Zone returns the current zone.
func (s *PlayerSession) Zone() *world.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zone
}

// Position returns the player's cell.
func (s *PlayerSession) Position() gruid.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Message queues text for the player. A full or closed outbox drops it.
func (s *PlayerSession) Message(text string) {
	_ = s.Outbox.Push(text)
}

// SetAutoTravel stores the autotravel target setting.
func (s *PlayerSession) SetAutoTravel(setting string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoTravel = setting
}

// AutoTravel returns the stored autotravel setting.
func (s *PlayerSession) AutoTravel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoTravel
}

// SkipTurn marks the current turn as consumed.
func (s *PlayerSession) SkipTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipTurn = true
}

// TakeSkippedTurn reports whether a turn was skipped since the last call and
// clears the flag.
func (s *PlayerSession) TakeSkippedTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	skipped := s.skipTurn
	s.skipTurn = false
	return skipped
}

// Step moves the player one cell by dir and reveals the surroundings.
//
// Postcondition: Returns false and leaves the player in place when the
// destination lies outside the zone.
func (s *PlayerSession) Step(dir gruid.Point) bool {
	s.mu.Lock()
	next := s.pos.Add(dir)
	if !s.zone.Contains(next) {
		s.mu.Unlock()
		return false
	}
	s.pos = next
	s.mu.Unlock()
	s.Reveal()
	return true
}

// Reveal marks every entity within SightRadius of the player as seen and
// returns how many entities were newly seen.
func (s *PlayerSession) Reveal() int {
	s.mu.Lock()
	zone, pos := s.zone, s.pos
	s.mu.Unlock()

	radius := s.SightRadius
	if radius <= 0 {
		radius = DefaultSightRadius
	}
	n := 0
	for _, e := range zone.Entities() {
		if paths.DistanceChebyshev(pos, e.Pos) > radius || s.Knowledge.Seen(e) {
			continue
		}
		s.Knowledge.MarkSeen(e)
		n++
	}
	return n
}

// FollowAutoTravel walks the player to the autotravel target one cell at a
// time, revealing along the way, then clears the target.
//
// Postcondition: Returns ErrNoAutoTravel when no target is set, or an error
// when the setting is malformed or outside the zone.
func (s *PlayerSession) FollowAutoTravel() (gruid.Point, error) {
	setting := s.AutoTravel()
	if setting == "" {
		return s.Position(), ErrNoAutoTravel
	}
	var target gruid.Point
	if _, err := fmt.Sscanf(setting, "M%d,%d", &target.X, &target.Y); err != nil {
		return s.Position(), fmt.Errorf("parsing autotravel %q: %w", setting, err)
	}
	if !s.Zone().Contains(target) {
		return s.Position(), fmt.Errorf("autotravel target %v is outside the zone", target)
	}
	for s.Position() != target {
		pos := s.Position()
		s.Step(world.CellFromDirectionOf(pos, target).Sub(pos))
	}
	s.SetAutoTravel("")
	return target, nil
}

// WalkTo travels to p the way FollowAutoTravel does.
func (s *PlayerSession) WalkTo(p gruid.Point) error {
	s.SetAutoTravel(fmt.Sprintf("M%d,%d", p.X, p.Y))
	if _, err := s.FollowAutoTravel(); err != nil {
		s.SetAutoTravel("")
		return err
	}
	return nil
}
