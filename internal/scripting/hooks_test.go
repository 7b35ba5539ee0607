package scripting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneHooks_ValueMultiplier(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loot.lua", `
		function loot_value_multiplier(name)
			if name == "merchant" then return 1.5 end
			if name == "broke" then return 0 end
			if name == "odd" then return "lots" end
			if name == "crash" then error("boom") end
			return nil
		end
	`)
	require.NoError(t, mgr.LoadZone("marsh", dir, 0))
	hooks := mgr.Zone("marsh")
	ctx := context.Background()

	assert.InDelta(t, 1.5, hooks.ValueMultiplier(ctx, "merchant"), 1e-9)
	assert.InDelta(t, 1.0, hooks.ValueMultiplier(ctx, "broke"), 1e-9)
	assert.InDelta(t, 1.0, hooks.ValueMultiplier(ctx, "odd"), 1e-9)
	assert.InDelta(t, 1.0, hooks.ValueMultiplier(ctx, "crash"), 1e-9)
	assert.InDelta(t, 1.0, hooks.ValueMultiplier(ctx, "anyone"), 1e-9)
}

func TestZoneHooks_NoScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	hooks := mgr.Zone("nowhere")
	assert.InDelta(t, 1.0, hooks.ValueMultiplier(context.Background(), "p"), 1e-9)
	_, ok := hooks.ItemKnown("anything")
	assert.False(t, ok)
}

func TestZoneHooks_ItemKnown(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loot.lua", `
		function loot_item_known(id)
			if id == "cube" then return false end
			if id == "map" then return true end
			return nil
		end
	`)
	require.NoError(t, mgr.LoadZone("marsh", dir, 0))
	hooks := mgr.Zone("marsh")

	known, ok := hooks.ItemKnown("cube")
	assert.True(t, ok)
	assert.False(t, known)
	known, ok = hooks.ItemKnown("map")
	assert.True(t, ok)
	assert.True(t, known)
	_, ok = hooks.ItemKnown("nugget")
	assert.False(t, ok)
}

func TestZoneHooks_BundledContent(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadZone("salt_marsh", "../../content/scripts/salt_marsh", 0))
	hooks := mgr.Zone("salt_marsh")
	assert.InDelta(t, 1.1, hooks.ValueMultiplier(context.Background(), "p"), 1e-9)
	known, ok := hooks.ItemKnown("humming_cube")
	assert.True(t, ok)
	assert.False(t, known)
}
