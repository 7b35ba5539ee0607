package lootfinder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/loot"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// ValuableRatio is the value per pound at or above which PickupValuable
// collects an unmarked item.
const ValuableRatio = 1.0

// Walker moves the player onto a cell.
type Walker interface {
	WalkTo(p gruid.Point) error
}

// PickupTargets returns the seen takeable items autoexplore collects under
// mode, nearest first from the player's position. Marked items are always
// collected. PropAutoexploreAutoget overrides the mode for unmarked items:
// 0 never collects, any other value always does.
func PickupTargets(zone *world.Zone, from gruid.Point, k Knowledge, mult float64, mode loot.PickupType) []*world.Entity {
	takeable, _, _ := FilterZoneItems(zone.Entities(), k.Seen)
	var out []*world.Entity
	for _, e := range takeable {
		if wantsPickup(e, k, mult, mode) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b *world.Entity) int {
		return cmp.Compare(paths.DistanceChebyshev(from, a.Pos), paths.DistanceChebyshev(from, b.Pos))
	})
	return out
}

func wantsPickup(e *world.Entity, k Knowledge, mult float64, mode loot.PickupType) bool {
	if e.HasPart(PartAutoGetBeacon) {
		return true
	}
	if v, ok := e.IntProperty(PropAutoexploreAutoget); ok {
		return v != 0
	}
	switch mode {
	case loot.PickupAll:
		return true
	case loot.PickupValuable:
		if !k.IsItemKnown(e) {
			return false
		}
		value := e.Value * mult
		if e.Weight <= 0 {
			return value > 0
		}
		ratio := value / e.Weight
		return !math.IsNaN(ratio) && ratio >= ValuableRatio
	default:
		return false
	}
}

// AutoexploreResult summarizes one autoexplore run.
type AutoexploreResult struct {
	Picked []inventory.ItemInstance
	// Stopped is set when the pack refused an item and the run ended early.
	Stopped error
}

// Autoexplore walks the player to every pickup target in turn and moves it
// from the zone into pack, using the current pickup mode. The run stops at
// the first item the pack refuses.
//
// Precondition: env.Player, env.Knowledge, env.Values, env.Messages and
// env.Logger are non-nil.
// Postcondition: every picked item is gone from the zone and present in
// pack; a target that left the zone before the player arrived is skipped
// and not packed. Returns a non-nil error only when walking fails or ctx is cancelled.
func (lf *LootFinder) Autoexplore(ctx context.Context, env Env, pack *inventory.Backpack, walker Walker) (AutoexploreResult, error) {
	logger := env.Logger.With(zap.String("player", env.Player.Name()))
	zone := env.Player.Zone()
	mult := env.Values.ValueMultiplier(ctx, env.Player.Name())

	var res AutoexploreResult
	targets := PickupTargets(zone, env.Player.Position(), env.Knowledge, mult, lf.CurrentPickupType)
	if len(targets) == 0 {
		env.Messages.Message("There is nothing here you want to pick up.")
		return res, nil
	}

	for _, e := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		inst := inventory.ItemInstance{
			InstanceID: e.ID,
			ItemDefID:  e.DefID,
			Name:       e.Name,
			Weight:     e.Weight,
			Value:      e.Value * mult,
		}
		if err := pack.Add(inst); err != nil {
			if errors.Is(err, inventory.ErrOverweight) || errors.Is(err, inventory.ErrBackpackFull) {
				env.Messages.Message(fmt.Sprintf("You can't carry the {{W|%s}}.", e.Name))
				res.Stopped = err
				break
			}
			return res, fmt.Errorf("packing %q: %w", e.ID, err)
		}
		if err := walker.WalkTo(e.Pos); err != nil {
			_, _ = pack.Remove(inst.InstanceID)
			return res, fmt.Errorf("walking to %q: %w", e.ID, err)
		}
		if zone.Remove(e.ID) == nil {
			_, _ = pack.Remove(inst.InstanceID)
			logger.Debug("autoexplore target gone on arrival", zap.String("entity", e.ID))
			env.Messages.Message(fmt.Sprintf("The {{W|%s}} is no longer here.", e.Name))
			continue
		}
		e.RemovePart(PartAutoGetBeacon)
		e.RemoveIntProperty(PropAutoexploreAutoget)
		res.Picked = append(res.Picked, inst)
		env.Messages.Message(fmt.Sprintf("You pick up the {{W|%s}}.", e.Name))
	}

	logger.Info("autoexplore finished",
		zap.Stringer("pickup", lf.CurrentPickupType),
		zap.Int("targets", len(targets)),
		zap.Int("picked", len(res.Picked)),
		zap.NamedError("stopped", res.Stopped),
	)
	return res, nil
}
