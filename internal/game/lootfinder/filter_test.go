package lootfinder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

func seenAll(*world.Entity) bool { return true }

func ids(es []*world.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestFilterZoneItems_Partitions(t *testing.T) {
	hidden := &world.Entity{ID: "hidden", Takeable: true}
	hidden.AddPart(lootfinder.PartNoLootList)
	entities := []*world.Entity{
		{ID: "nugget", Takeable: true},
		{ID: "statue"},
		{ID: "pond", Liquid: &world.LiquidVolume{LiquidID: "water", Volume: 10, Pool: true}},
		{ID: "dry", Liquid: &world.LiquidVolume{LiquidID: "water", Pool: true}},
		{ID: "puddle", Liquid: &world.LiquidVolume{LiquidID: "water", Volume: 3}},
		{ID: "pocket", Takeable: true, Carried: true},
		hidden,
		{ID: "dagger", Takeable: true},
	}

	takeable, liquids, ignored := lootfinder.FilterZoneItems(entities, seenAll)
	assert.Equal(t, []string{"nugget", "dagger"}, ids(takeable))
	assert.Equal(t, []string{"pond"}, ids(liquids))
	assert.Equal(t, []string{"statue", "dry", "puddle", "pocket", "hidden"}, ids(ignored))
}

func TestFilterZoneItems_UnseenIgnored(t *testing.T) {
	a := &world.Entity{ID: "a", Takeable: true}
	b := &world.Entity{ID: "b", Takeable: true}
	takeable, _, ignored := lootfinder.FilterZoneItems([]*world.Entity{a, b}, func(e *world.Entity) bool {
		return e == b
	})
	assert.Equal(t, []string{"b"}, ids(takeable))
	assert.Equal(t, []string{"a"}, ids(ignored))
}

// Property: the three partitions together hold every entity exactly once.
func TestPropertyFilterZoneItems_IsPartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		entities := make([]*world.Entity, n)
		for i := range entities {
			e := &world.Entity{
				ID:       string(rune('a' + i)),
				Takeable: rapid.Bool().Draw(t, "takeable"),
				Carried:  rapid.Bool().Draw(t, "carried"),
			}
			if rapid.Bool().Draw(t, "liquid") {
				e.Liquid = &world.LiquidVolume{Volume: rapid.IntRange(0, 3).Draw(t, "volume"), Pool: rapid.Bool().Draw(t, "pool")}
			}
			entities[i] = e
		}
		takeable, liquids, ignored := lootfinder.FilterZoneItems(entities, seenAll)
		if got := len(takeable) + len(liquids) + len(ignored); got != n {
			t.Fatalf("partition sizes sum to %d, want %d", got, n)
		}
		for _, e := range liquids {
			if !e.IsPool() {
				t.Fatalf("%s listed as liquid but is not a pool", e.ID)
			}
		}
		for _, e := range takeable {
			if !e.Takeable || e.Carried {
				t.Fatalf("%s listed as takeable", e.ID)
			}
		}
	})
}
