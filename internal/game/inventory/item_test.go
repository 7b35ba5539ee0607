package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/game/inventory"
)

func validItem() *inventory.ItemDef {
	return &inventory.ItemDef{
		ID:     "copper_nugget",
		Name:   "copper nugget",
		Kind:   inventory.KindTrade,
		Glyph:  "*",
		Weight: 1,
		Value:  10,
	}
}

func TestItemDef_Validate_Accepts(t *testing.T) {
	assert.NoError(t, validItem().Validate())
}

func TestItemDef_Validate_Rejects(t *testing.T) {
	cases := map[string]func(d *inventory.ItemDef){
		"empty id":        func(d *inventory.ItemDef) { d.ID = "" },
		"empty name":      func(d *inventory.ItemDef) { d.Name = "" },
		"invalid kind":    func(d *inventory.ItemDef) { d.Kind = "weapon" },
		"empty glyph":     func(d *inventory.ItemDef) { d.Glyph = "" },
		"long glyph":      func(d *inventory.ItemDef) { d.Glyph = "**" },
		"negative weight": func(d *inventory.ItemDef) { d.Weight = -1 },
		"negative value":  func(d *inventory.ItemDef) { d.Value = -0.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := validItem()
			mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestItemDef_Validate_ReportsAllViolations(t *testing.T) {
	err := (&inventory.ItemDef{Weight: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID must not be empty")
	assert.Contains(t, err.Error(), "Name must not be empty")
	assert.Contains(t, err.Error(), "Weight must be >= 0")
}

func TestItemDef_KindPredicates(t *testing.T) {
	d := validItem()
	assert.True(t, d.Takeable())
	assert.True(t, d.KnownByDefault())

	d.Kind = inventory.KindScenery
	assert.False(t, d.Takeable())

	d.Kind = inventory.KindArtifact
	assert.True(t, d.Takeable())
	assert.False(t, d.KnownByDefault())
}

func TestItemDef_GlyphRune(t *testing.T) {
	d := validItem()
	d.Glyph = "÷"
	assert.Equal(t, '÷', d.GlyphRune())
	d.Glyph = ""
	assert.Equal(t, '?', d.GlyphRune())
}

func TestLoadItems_ReadsYAMLAndSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nugget.yaml", `
id: copper_nugget
name: copper nugget
kind: trade
glyph: "*"
weight: 1
value: 10
`)
	writeFile(t, dir, "README.txt", "not an item")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	items, err := inventory.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "copper_nugget", items[0].ID)
	assert.InDelta(t, 10.0, items[0].Value, 1e-9)
}

func TestLoadItems_InvalidItemFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yml", "id: x\nname: X\nkind: weapon\nglyph: x\n")
	_, err := inventory.LoadItems(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yml")
}

func TestLoadItems_MissingDir(t *testing.T) {
	_, err := inventory.LoadItems(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestProperty_ItemDef_NonNegativeFieldsValidate(t *testing.T) {
	kinds := []string{inventory.KindJunk, inventory.KindTrade, inventory.KindTool, inventory.KindArtifact, inventory.KindScenery}
	rapid.Check(t, func(t *rapid.T) {
		d := &inventory.ItemDef{
			ID:     rapid.StringMatching(`[a-z_]{1,16}`).Draw(t, "id"),
			Name:   rapid.StringMatching(`[a-z ]{1,16}`).Draw(t, "name"),
			Kind:   rapid.SampledFrom(kinds).Draw(t, "kind"),
			Glyph:  rapid.SampledFrom([]string{"*", "&", "/", "[", "%", "÷"}).Draw(t, "glyph"),
			Weight: rapid.Float64Range(0, 1000).Draw(t, "weight"),
			Value:  rapid.Float64Range(0, 1000).Draw(t, "value"),
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("valid def rejected: %v", err)
		}
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
