package world

import (
	"fmt"
	"testing"

	"codeberg.org/anaseto/gruid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewManager(t *testing.T) {
	other := NewZone("other", "Other", gruid.Point{X: 3, Y: 3})
	mgr, err := NewManager([]*Zone{validTestZone(), other})
	require.NoError(t, err)
	assert.Equal(t, 2, mgr.ZoneCount())
	assert.Equal(t, "test", mgr.StartZone().ID)

	z, ok := mgr.Zone("other")
	require.True(t, ok)
	assert.Same(t, other, z)
	_, ok = mgr.Zone("missing")
	assert.False(t, ok)

	start, err := mgr.Start()
	require.NoError(t, err)
	assert.Same(t, mgr.StartZone(), start)

	all := mgr.AllZones()
	all[0] = nil
	assert.NotNil(t, mgr.AllZones()[0], "AllZones returns a copy")
}

func TestNewManager_Rejects(t *testing.T) {
	_, err := NewManager([]*Zone{validTestZone(), validTestZone()})
	assert.ErrorContains(t, err, "duplicate zone ID")
	_, err = NewManager([]*Zone{validTestZone(), nil})
	assert.ErrorContains(t, err, "zone 1 is nil")
}

func TestNewManager_Empty(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)
	assert.Nil(t, mgr.StartZone())
	_, err = mgr.Start()
	assert.ErrorIs(t, err, ErrNoZones)
	assert.Zero(t, mgr.ZoneCount())
	assert.Empty(t, mgr.AllZones())
}

func TestManager_AllZonesSorted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		perm := rapid.Permutation(makeRange(n)).Draw(t, "perm")
		zones := make([]*Zone, n)
		for i, p := range perm {
			zones[i] = NewZone(fmt.Sprintf("z%02d", p), "Z", gruid.Point{X: 1, Y: 1})
		}
		mgr, err := NewManager(zones)
		if err != nil {
			t.Fatal(err)
		}
		all := mgr.AllZones()
		for i := range all {
			if all[i].ID != fmt.Sprintf("z%02d", i) {
				t.Fatalf("position %d holds %s", i, all[i].ID)
			}
		}
	})
}

func makeRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
