package scripting

import (
	"context"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// Loot hooks a zone script may define.
const (
	// HookValueMultiplier is loot_value_multiplier(player_name) → number.
	HookValueMultiplier = "loot_value_multiplier"
	// HookItemKnown is loot_item_known(def_id) → boolean|nil.
	HookItemKnown = "loot_item_known"
)

// ZoneHooks binds the loot hooks to one zone.
type ZoneHooks struct {
	m      *Manager
	zoneID string
}

// Zone returns the loot hooks for zoneID.
func (m *Manager) Zone(zoneID string) ZoneHooks {
	return ZoneHooks{m: m, zoneID: zoneID}
}

// ValueMultiplier returns the player's value multiplier.
//
// Postcondition: Returns 1.0 when the hook is undefined, fails, or returns
// anything other than a positive finite number.
func (h ZoneHooks) ValueMultiplier(ctx context.Context, playerName string) float64 {
	ret, err := h.m.CallHook(ctx, h.zoneID, HookValueMultiplier, lua.LString(playerName))
	if err != nil {
		return 1
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 1
	}
	f := float64(n)
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 1
	}
	return f
}

// ItemKnown asks the zone script whether the item definition is known.
// ok is false when the hook is undefined or returns nil.
func (h ZoneHooks) ItemKnown(defID string) (known bool, ok bool) {
	ret, err := h.m.CallHook(context.Background(), h.zoneID, HookItemKnown, lua.LString(defID))
	if err != nil {
		return false, false
	}
	b, isBool := ret.(lua.LBool)
	if !isBool {
		return false, false
	}
	return bool(b), true
}
