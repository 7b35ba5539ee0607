package knowledge_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/knowledge"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

func registry(t *testing.T) *inventory.Registry {
	t.Helper()
	reg := inventory.NewRegistry()
	require.NoError(t, reg.RegisterItem(&inventory.ItemDef{ID: "nugget", Name: "nugget", Kind: inventory.KindTrade, Glyph: "*", Value: 10}))
	require.NoError(t, reg.RegisterItem(&inventory.ItemDef{ID: "cube", Name: "cube", Kind: inventory.KindArtifact, Glyph: "%", Value: 300}))
	require.NoError(t, reg.RegisterLiquid(&inventory.LiquidDef{ID: "water", Name: "water", ValuePerDram: 1}))
	require.NoError(t, reg.RegisterLiquid(&inventory.LiquidDef{ID: "flux", Name: "flux", ValuePerDram: 250, Exotic: true}))
	return reg
}

func TestTracker_ItemDefaults(t *testing.T) {
	tr := knowledge.NewTracker(registry(t))
	assert.True(t, tr.IsItemKnown(&world.Entity{DefID: "nugget", Value: 10}))
	assert.False(t, tr.IsItemKnown(&world.Entity{DefID: "cube", Value: 300}))
	assert.True(t, tr.IsItemKnown(&world.Entity{DefID: "cube"}), "worthless items are always known")
	assert.True(t, tr.IsItemKnown(&world.Entity{DefID: "unregistered", Value: 5}))
}

func TestTracker_LearnItem(t *testing.T) {
	tr := knowledge.NewTracker(registry(t))
	cube := &world.Entity{DefID: "cube", Value: 300}
	tr.LearnItem("cube")
	assert.True(t, tr.IsItemKnown(cube))
}

func TestTracker_Override(t *testing.T) {
	tr := knowledge.NewTracker(registry(t), knowledge.WithOverride(func(defID string) (bool, bool) {
		switch defID {
		case "nugget":
			return false, true
		case "cube":
			return true, true
		}
		return false, false
	}))
	assert.False(t, tr.IsItemKnown(&world.Entity{DefID: "nugget", Value: 10}))
	assert.True(t, tr.IsItemKnown(&world.Entity{DefID: "cube", Value: 300}))

	tr.LearnItem("nugget")
	assert.True(t, tr.IsItemKnown(&world.Entity{DefID: "nugget", Value: 10}), "learning beats the override")
}

func TestTracker_Liquids(t *testing.T) {
	tr := knowledge.NewTracker(registry(t))
	assert.True(t, tr.IsLiquidKnown(nil))
	assert.True(t, tr.IsLiquidKnown(&world.LiquidVolume{LiquidID: "water"}))
	assert.False(t, tr.IsLiquidKnown(&world.LiquidVolume{LiquidID: "flux"}))
	tr.LearnLiquid("flux")
	assert.True(t, tr.IsLiquidKnown(&world.LiquidVolume{LiquidID: "flux"}))
}

func TestTracker_Seen(t *testing.T) {
	tr := knowledge.NewTracker(registry(t))
	a, b, c := &world.Entity{ID: "a"}, &world.Entity{ID: "b"}, &world.Entity{ID: "c"}
	assert.False(t, tr.Seen(a))
	tr.MarkSeen(a)
	assert.True(t, tr.Seen(a))
	tr.SeeAll([]*world.Entity{b, c})
	assert.True(t, tr.Seen(b))
	assert.True(t, tr.Seen(c))
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := knowledge.NewTracker(registry(t))
	e := &world.Entity{ID: "e", DefID: "cube", Value: 300}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkSeen(e)
			tr.LearnItem("cube")
			_ = tr.IsItemKnown(e)
			_ = tr.Seen(e)
		}()
	}
	wg.Wait()
	assert.True(t, tr.IsItemKnown(e))
}
