package scripting_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/scripting"
)

func TestNewSandbox_Globals(t *testing.T) {
	L := scripting.NewSandbox(0)
	defer L.Close()

	for _, name := range []string{"os", "io", "debug", "package", "dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), name)
	}
	for _, name := range []string{"math", "string", "table", "pairs", "tostring"} {
		assert.NotEqual(t, lua.LNil, L.GetGlobal(name), name)
	}
}

func TestNewSandbox_RunsValueMath(t *testing.T) {
	L := scripting.NewSandbox(0)
	defer L.Close()
	require.NoError(t, L.DoString(`
		local items = { {v = 10, w = 1}, {v = 5, w = 9} }
		table.sort(items, function(a, b) return a.v / a.w > b.v / b.w end)
		ratio = string.format("%.2f", items[1].v / items[1].w)
	`))
	assert.Equal(t, "10.00", L.GetGlobal("ratio").String())
}

func TestNewSandbox_LimitNamesCause(t *testing.T) {
	L := scripting.NewSandbox(10)
	defer L.Close()
	err := L.DoString(`while true do end`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), scripting.ErrInstructionLimit.Error())
}

// Property: any budget stops an endless loop, and a budget well above a
// script's cost lets it finish.
func TestProperty_BudgetBoundsLoops(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(t, "limit")
		L := scripting.NewSandbox(limit)
		defer L.Close()
		if err := L.DoString(`while true do end`); err == nil {
			t.Fatalf("limit %d let an endless loop finish", limit)
		}

		n := rapid.IntRange(0, 20).Draw(t, "n")
		ok := scripting.NewSandbox(1000)
		defer ok.Close()
		if err := ok.DoString(`local s = 0 for i = 1, ` + strconv.Itoa(n) + ` do s = s + i end`); err != nil {
			t.Fatalf("short loop of %d failed: %v", n, err)
		}
	})
}
