package handlers

import (
	"strings"
	"testing"

	"codeberg.org/anaseto/gruid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/ability"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/knowledge"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/session"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

type seenSet map[string]bool

func (s seenSet) Seen(e *world.Entity) bool { return s[e.ID] }

func smallZone(t *testing.T) *world.Zone {
	t.Helper()
	z := world.NewZone("dunes", "Salt Dunes", gruid.Point{X: 5, Y: 3})
	z.Description = "Wind-carved salt."
	for _, e := range []*world.Entity{
		{ID: "nugget", Name: "copper nugget", Glyph: '*', Color: "W", Pos: gruid.Point{X: 3, Y: 0}, Takeable: true},
		{ID: "pool", Name: "water", Glyph: '~', Color: "B", Pos: gruid.Point{X: 4, Y: 2}, Liquid: &world.LiquidVolume{LiquidID: "water", Volume: 50, Pool: true}},
		{ID: "hidden", Name: "humming cube", Glyph: '%', Color: "M", Pos: gruid.Point{X: 0, Y: 2}, Takeable: true},
		{ID: "pocketed", Name: "bronze dagger", Glyph: '/', Color: "w", Pos: gruid.Point{X: 1, Y: 1}, Takeable: true, Carried: true},
	} {
		require.NoError(t, z.Add(e))
	}
	return z
}

func TestRenderZone_Map(t *testing.T) {
	z := smallZone(t)
	seen := seenSet{"nugget": true, "pool": true, "pocketed": true}

	out := RenderZone(z, gruid.Point{X: 1, Y: 0}, seen, nil, false)

	assert.Contains(t, out, "Salt Dunes\r\n")
	assert.Contains(t, out, "Wind-carved salt.\r\n")
	assert.Contains(t, out, ".@.*.\r\n.....\r\n....~\r\n")
	assert.NotContains(t, out, "humming cube")
	assert.NotContains(t, out, "bronze dagger")
	assert.NotContains(t, out, "Also here")
}

func TestRenderZone_BeaconAndPlayers(t *testing.T) {
	z := smallZone(t)
	e, ok := z.Entity("nugget")
	require.True(t, ok)
	e.AddPart(lootfinder.PartAutoGetBeacon)

	out := RenderZone(z, gruid.Point{}, seenSet{"nugget": true}, []string{"Mehmet", "Irudad"}, false)

	assert.Contains(t, out, "You see:\r\n")
	assert.Contains(t, out, " * copper nugget")
	assert.Contains(t, out, "3,0\r\n")
	assert.Contains(t, out, "Also here: Mehmet, Irudad\r\n")
}

func TestRenderZone_Color(t *testing.T) {
	z := smallZone(t)
	out := RenderZone(z, gruid.Point{}, seenSet{"nugget": true}, nil, true)
	assert.Contains(t, out, telnet.BrightYellow+"*")
	assert.NotContains(t, out, "{{")
	assert.Equal(t, RenderZone(z, gruid.Point{}, seenSet{"nugget": true}, nil, false), telnet.StripANSI(out))
}

func TestRenderAbilities(t *testing.T) {
	sessions := session.NewManager()
	z := smallZone(t)
	sess, err := sessions.AddPlayer("u1", "Mehmet", 0, z, knowledge.NewTracker(inventory.NewRegistry()))
	require.NoError(t, err)

	assert.Contains(t, telnet.StripANSI(renderAbilities(sess)), "You have no abilities.")

	sess.LootFinder.ToggleAbility(sess.Abilities, true)
	sess.Abilities.Add(ability.Ability{Name: "Sprint", Command: "sprint", Class: "Skill"})
	out := telnet.StripANSI(renderAbilities(sess))
	assert.Contains(t, out, "Abilities:")
	assert.Contains(t, out, lootfinder.AbilityName)
	assert.Contains(t, out, "[Skill]")
	assert.Less(t, strings.Index(out, "Sprint"), strings.Index(out, lootfinder.AbilityName))
}

func TestRenderPack(t *testing.T) {
	pack := inventory.NewBackpack(4, 20)
	assert.Equal(t, "You are carrying nothing.\r\n", renderPack(pack, false))

	require.NoError(t, pack.Add(inventory.ItemInstance{InstanceID: "n1", Name: "copper nugget", Weight: 1, Value: 10}))
	require.NoError(t, pack.Add(inventory.ItemInstance{InstanceID: "d1", Name: "bronze dagger", Weight: 2.5, Value: 4}))
	out := renderPack(pack, false)
	assert.Contains(t, out, "You are carrying:")
	assert.Contains(t, out, "copper nugget")
	assert.Contains(t, out, "2.5 lbs  $4")
	assert.Contains(t, out, "2/4 slots, 3.5/20.0 lbs, $14 total")
	assert.Less(t, strings.Index(out, "copper nugget"), strings.Index(out, "bronze dagger"))
	assert.Equal(t, out, telnet.StripANSI(renderPack(pack, true)))
}

func TestPropertyRenderZoneHasOneRowPerLine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 30).Draw(t, "w")
		h := rapid.IntRange(1, 12).Draw(t, "h")
		z := world.NewZone("z", "Z", gruid.Point{X: w, Y: h})
		viewer := gruid.Point{X: rapid.IntRange(0, w-1).Draw(t, "x"), Y: rapid.IntRange(0, h-1).Draw(t, "y")}

		out := RenderZone(z, viewer, seenSet{}, nil, false)
		rows := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")[2:]
		if len(rows) != h {
			t.Fatalf("got %d map rows, want %d", len(rows), h)
		}
		if strings.Count(out, "@") != 1 {
			t.Fatalf("viewer drawn %d times", strings.Count(out, "@"))
		}
		for _, r := range rows {
			if len(r) != w {
				t.Fatalf("row %q has width %d, want %d", r, len(r), w)
			}
		}
	})
}
