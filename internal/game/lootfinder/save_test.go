package lootfinder_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/game/loot"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
)

func TestSave_PositionalRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id, err := uuid.FromBytes(rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(t, "id"))
		if err != nil {
			t.Fatal(err)
		}
		src := &lootfinder.LootFinder{
			AbilityID:         id,
			CurrentSortType:   loot.SortType(rapid.IntRange(0, 1).Draw(t, "sort")),
			CurrentPickupType: loot.PickupType(rapid.IntRange(0, 2).Draw(t, "pickup")),
		}
		var buf bytes.Buffer
		if err := src.Write(&buf); err != nil {
			t.Fatal(err)
		}
		dst := lootfinder.New()
		if err := dst.Read(&buf, lootfinder.VersionCurrent); err != nil {
			t.Fatal(err)
		}
		if *dst != *src {
			t.Fatalf("round trip mismatch: %+v != %+v", dst, src)
		}
	})
}

func TestSave_PositionalLayout(t *testing.T) {
	lf := &lootfinder.LootFinder{
		AbilityID:         uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff"),
		CurrentSortType:   loot.SortWeight,
		CurrentPickupType: loot.PickupAll,
	}
	var buf bytes.Buffer
	require.NoError(t, lf.Write(&buf))
	data := buf.Bytes()
	require.Len(t, data, 24)
	assert.Equal(t, lf.AbilityID[:], data[:16])
	assert.Equal(t, uint32(loot.SortWeight), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint32(loot.PickupAll), binary.LittleEndian.Uint32(data[20:24]))
}

func TestSave_LegacyLeavesDefaults(t *testing.T) {
	lf := lootfinder.New()
	require.NoError(t, lf.Read(strings.NewReader("garbage that is never read"), lootfinder.VersionLegacy))
	assert.Equal(t, *lootfinder.New(), *lf)
}

func TestSave_EmptyPositionalLeavesDefaults(t *testing.T) {
	for _, version := range []string{"", "9.9.9", lootfinder.VersionCurrent} {
		lf := lootfinder.New()
		require.NoError(t, lf.Read(bytes.NewReader(nil), version), version)
		assert.Equal(t, *lootfinder.New(), *lf)
	}
}

func TestSave_TruncatedPositional(t *testing.T) {
	for _, n := range []int{1, 15, 16, 20, 23} {
		lf := lootfinder.New()
		err := lf.Read(bytes.NewReader(make([]byte, n)), lootfinder.VersionCurrent)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "length %d", n)
	}
}

func TestSave_NamedUpgrade(t *testing.T) {
	id := uuid.New()
	payload := "AbilityGuid=" + id.String() + "\n" +
		"\n" +
		"SomeRetiredField=7\n" +
		"CurrentSortType=1\n" +
		"CurrentPickupType = 2\n"
	lf := lootfinder.New()
	require.NoError(t, lf.Read(strings.NewReader(payload), lootfinder.VersionNamed))
	assert.Equal(t, id, lf.AbilityID)
	assert.Equal(t, loot.SortWeight, lf.CurrentSortType)
	assert.Equal(t, loot.PickupAll, lf.CurrentPickupType)
}

func TestSave_NamedPartialKeepsDefaults(t *testing.T) {
	lf := lootfinder.New()
	require.NoError(t, lf.Read(strings.NewReader("CurrentSortType=1\n"), lootfinder.VersionNamed))
	assert.Equal(t, uuid.Nil, lf.AbilityID)
	assert.Equal(t, loot.SortWeight, lf.CurrentSortType)
	assert.Equal(t, loot.DefaultPickupType(), lf.CurrentPickupType)
}

func TestSave_NamedMalformed(t *testing.T) {
	for _, payload := range []string{
		"CurrentSortType\n",
		"AbilityGuid=not-a-uuid\n",
		"CurrentPickupType=many\n",
	} {
		lf := lootfinder.New()
		assert.Error(t, lf.Read(strings.NewReader(payload), lootfinder.VersionNamed), payload)
	}
}

func TestSave_OutOfRangeModesReset(t *testing.T) {
	var buf bytes.Buffer
	bad := &lootfinder.LootFinder{CurrentSortType: loot.SortType(7), CurrentPickupType: loot.PickupType(-3)}
	require.NoError(t, bad.Write(&buf))

	lf := lootfinder.New()
	require.NoError(t, lf.Read(&buf, ""))
	assert.Equal(t, loot.DefaultSortType(), lf.CurrentSortType)
	assert.Equal(t, loot.DefaultPickupType(), lf.CurrentPickupType)

	lf = lootfinder.New()
	require.NoError(t, lf.Read(strings.NewReader("CurrentSortType=42\n"), lootfinder.VersionNamed))
	assert.Equal(t, loot.DefaultSortType(), lf.CurrentSortType)
}
