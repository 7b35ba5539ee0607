// Package lootfinder builds the zone loot list from world state, runs the loot
// popup and applies the player's choices back to the zone.
package lootfinder

import (
	"context"
	"fmt"

	"codeberg.org/anaseto/gruid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/game/ability"
	"github.com/cory-johannsen/lootlist/internal/game/loot"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// Ability identity.
const (
	AbilityName         = "Zone Loot List"
	AbilityClass        = "Skill"
	CommandZoneLootList = "Plaidman_AnEyeForValue_Command_ZoneLootList"
)

// NoLootMessage is shown when the zone holds nothing worth listing.
const NoLootMessage = "You haven't seen any new loot in this area."

// Player is the acting player as seen by the loot list.
type Player interface {
	Name() string
	Position() gruid.Point
	Zone() *world.Zone
}

// Knowledge answers what the player has seen and understands.
type Knowledge interface {
	Seen(e *world.Entity) bool
	IsItemKnown(e *world.Entity) bool
	IsLiquidKnown(lv *world.LiquidVolume) bool
}

// Values supplies the player's value multiplier.
type Values interface {
	ValueMultiplier(ctx context.Context, playerName string) float64
}

// Messages delivers a plain message to the player.
type Messages interface {
	Message(text string)
}

// Travel sets the player's autotravel target.
type Travel interface {
	SetAutoTravel(setting string)
}

// Turns marks the player's current turn as consumed.
type Turns interface {
	SkipTurn()
}

// Env carries the collaborators ListItems needs for one invocation.
type Env struct {
	Player    Player
	Knowledge Knowledge
	Values    Values
	Presenter loot.Presenter
	Messages  Messages
	Travel    Travel
	Turns     Turns
	Logger    *zap.Logger
	// PopupOptions are applied to every popup this invocation opens.
	PopupOptions []loot.PopupOption
}

// LootFinder is the per-player loot list state that survives between
// invocations and across saves.
type LootFinder struct {
	AbilityID         uuid.UUID
	CurrentSortType   loot.SortType
	CurrentPickupType loot.PickupType
}

// New returns a LootFinder with default modes and no ability.
func New() *LootFinder {
	return &LootFinder{
		CurrentSortType:   loot.DefaultSortType(),
		CurrentPickupType: loot.DefaultPickupType(),
	}
}

// ToggleAbility adds the loot list ability to reg when enabled and removes it
// otherwise.
//
// Postcondition: when enabled, AbilityID names an ability present in reg;
// when disabled, AbilityID is uuid.Nil.
func (lf *LootFinder) ToggleAbility(reg *ability.Registry, enabled bool) {
	if enabled {
		lf.requireAbility(reg)
		return
	}
	lf.removeAbility(reg)
}

func (lf *LootFinder) requireAbility(reg *ability.Registry) {
	if _, ok := reg.Get(lf.AbilityID); ok {
		return
	}
	lf.AbilityID = reg.Add(ability.Ability{
		Name:    AbilityName,
		Command: CommandZoneLootList,
		Class:   AbilityClass,
		Silent:  true,
	})
}

func (lf *LootFinder) removeAbility(reg *ability.Registry) {
	if lf.AbilityID == uuid.Nil {
		return
	}
	reg.Remove(lf.AbilityID)
	lf.AbilityID = uuid.Nil
}

// HandleCommand runs the loot list when cmd is CommandZoneLootList.
//
// Postcondition: handled is false and err is nil for any other command.
func (lf *LootFinder) HandleCommand(ctx context.Context, cmd string, env Env) (handled bool, err error) {
	if cmd != CommandZoneLootList {
		return false, nil
	}
	return true, lf.ListItems(ctx, env)
}

// Uninstall removes the ability from reg and strips every auto-get beacon
// from the given zones. It returns the number of beacons removed.
func (lf *LootFinder) Uninstall(reg *ability.Registry, zones ...*world.Zone) int {
	removed := 0
	for _, z := range zones {
		for _, e := range z.Entities() {
			if e.RemovePart(PartAutoGetBeacon) {
				removed++
			}
		}
	}
	lf.removeAbility(reg)
	return removed
}

// entityCandidate presents a zone entity to the loot popup.
type entityCandidate struct {
	e *world.Entity
}

func (c entityCandidate) DisplayName() string { return c.e.Name }
func (c entityCandidate) Icon() loot.Icon     { return loot.Icon{Glyph: c.e.Glyph, Color: c.e.Color} }
func (c entityCandidate) BaseValue() float64  { return c.e.Value }
func (c entityCandidate) Weight() float64     { return c.e.Weight }

// ListItems lists the lootable items the player has seen in the current zone
// and applies the player's choices until the popup closes.
//
// Precondition: every Env collaborator is non-nil.
// Postcondition: the sort and pickup modes equal the popup's final modes,
// including after cancel or error. Returns a non-nil error only when the
// presenter fails or ctx is cancelled.
func (lf *LootFinder) ListItems(ctx context.Context, env Env) error {
	logger := env.Logger.With(zap.String("player", env.Player.Name()))
	zone := env.Player.Zone()

	takeable, liquids, _ := FilterZoneItems(zone.Entities(), env.Knowledge.Seen)
	if len(takeable) == 0 && len(liquids) == 0 {
		env.Messages.Message(NoLootMessage)
		return nil
	}

	var initial []int
	for i, e := range takeable {
		if e.HasPart(PartAutoGetBeacon) {
			initial = append(initial, i)
		}
	}

	mult := env.Values.ValueMultiplier(ctx, env.Player.Name())
	sources := make([]*world.Entity, 0, len(takeable)+len(liquids))
	items := make([]loot.InventoryItem, 0, len(takeable)+len(liquids))
	for i, e := range takeable {
		known := env.Knowledge.IsItemKnown(e)
		items = append(items, loot.NewInventoryItem(i, entityCandidate{e}, mult, known, loot.KindTakeable))
		sources = append(sources, e)
	}
	for i, e := range liquids {
		known := env.Knowledge.IsLiquidKnown(e.Liquid)
		items = append(items, loot.NewInventoryItem(len(takeable)+i, entityCandidate{e}, mult, known, loot.KindLiquid))
		sources = append(sources, e)
	}

	popup := loot.NewZonePopup(env.Presenter, logger, env.PopupOptions...)
	popup.CurrentSortType = lf.CurrentSortType
	popup.CurrentPickupType = lf.CurrentPickupType
	defer func() {
		lf.CurrentSortType = popup.CurrentSortType
		lf.CurrentPickupType = popup.CurrentPickupType
	}()

	session := popup.Show(items, initial)
	var on, off int
	for action := range session.All(ctx) {
		switch action.Type {
		case loot.ActionTurnOn:
			e, ok := takeableAt(takeable, action, logger)
			if !ok {
				continue
			}
			e.RemoveIntProperty(PropAutoexploreAutoget)
			e.AddPart(PartAutoGetBeacon)
			on++
			logger.Debug("auto-get beacon attached", zap.String("entity", e.ID))

		case loot.ActionTurnOff:
			e, ok := takeableAt(takeable, action, logger)
			if !ok {
				continue
			}
			e.RemovePart(PartAutoGetBeacon)
			off++
			logger.Debug("auto-get beacon removed", zap.String("entity", e.ID))

		case loot.ActionSort:
			lf.CurrentSortType = popup.CurrentSortType
			lf.CurrentPickupType = popup.CurrentPickupType

		case loot.ActionTravel:
			if action.Index < 0 || action.Index >= len(sources) {
				logger.Warn("travel index out of range", zap.Int("index", action.Index), zap.Int("candidates", len(sources)))
				continue
			}
			target := sources[action.Index]
			landing := zone.Clamp(world.CellFromDirectionOf(target.Pos, env.Player.Position()))
			env.Travel.SetAutoTravel(fmt.Sprintf("M%d,%d", landing.X, landing.Y))
			env.Turns.SkipTurn()
			logger.Debug("auto-travel set",
				zap.String("entity", target.ID),
				zap.Int("x", landing.X),
				zap.Int("y", landing.Y),
			)
		}
	}

	logger.Info("loot list closed",
		zap.Int("candidates", len(items)),
		zap.Int("turned_on", on),
		zap.Int("turned_off", off),
	)
	if err := session.Err(); err != nil {
		return fmt.Errorf("listing zone loot: %w", err)
	}
	return nil
}

// takeableAt resolves a toggle event to its takeable entity. Liquid indices
// reach here from select-all and are skipped.
func takeableAt(takeable []*world.Entity, a loot.Action, logger *zap.Logger) (*world.Entity, bool) {
	if a.Index < 0 || a.Index >= len(takeable) {
		logger.Debug("ignoring toggle outside takeable items",
			zap.Stringer("action", a.Type),
			zap.Int("index", a.Index),
			zap.Int("takeable", len(takeable)),
		)
		return nil, false
	}
	return takeable[a.Index], true
}
