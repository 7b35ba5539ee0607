package lootfinder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/lootlist/internal/game/loot"
)

// Save format versions. Any other version, including the empty string, is
// read positionally.
const (
	// VersionLegacy payloads predate the persisted fields; nothing is read.
	VersionLegacy = "1.0.0"
	// VersionNamed payloads hold newline separated name=value pairs.
	VersionNamed = "2.0.0"
	// VersionCurrent is written alongside every payload produced by Write.
	VersionCurrent = "3.0.0"
)

// Field names used by the named format.
const (
	fieldAbilityGUID       = "AbilityGuid"
	fieldCurrentSortType   = "CurrentSortType"
	fieldCurrentPickupType = "CurrentPickupType"
)

// Write encodes lf positionally: the 16-byte ability ID followed by the sort
// and pickup modes as little-endian int32.
func (lf *LootFinder) Write(w io.Writer) error {
	var buf [24]byte
	copy(buf[:16], lf.AbilityID[:])
	binary.LittleEndian.PutUint32(buf[16:20], uint32(int32(lf.CurrentSortType)))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(int32(lf.CurrentPickupType)))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("writing loot finder state: %w", err)
	}
	return nil
}

// Read decodes lf from r according to modVersion.
//
// Postcondition: an empty positional payload or a VersionLegacy payload
// leaves lf unchanged. Modes outside their range are reset to defaults.
// Truncated payloads return an error wrapping io.ErrUnexpectedEOF.
func (lf *LootFinder) Read(r io.Reader, modVersion string) error {
	var err error
	switch modVersion {
	case VersionLegacy:
		return nil
	case VersionNamed:
		err = lf.readNamed(r)
	default:
		err = lf.readPositional(r)
	}
	if err != nil {
		return fmt.Errorf("reading loot finder state (version %q): %w", modVersion, err)
	}
	if !lf.CurrentSortType.Valid() {
		lf.CurrentSortType = loot.DefaultSortType()
	}
	if !lf.CurrentPickupType.Valid() {
		lf.CurrentPickupType = loot.DefaultPickupType()
	}
	return nil
}

func (lf *LootFinder) readPositional(r io.Reader) error {
	var buf [24]byte
	n, err := io.ReadFull(r, buf[:])
	switch {
	case errors.Is(err, io.EOF) && n == 0:
		return nil
	case err != nil:
		return fmt.Errorf("positional payload is %d bytes: %w", n, err)
	}
	id, err := uuid.FromBytes(buf[:16])
	if err != nil {
		return fmt.Errorf("decoding ability id: %w", err)
	}
	lf.AbilityID = id
	lf.CurrentSortType = loot.SortType(int32(binary.LittleEndian.Uint32(buf[16:20])))
	lf.CurrentPickupType = loot.PickupType(int32(binary.LittleEndian.Uint32(buf[20:24])))
	return nil
}

func (lf *LootFinder) readNamed(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		name, value, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("line %d: missing '=' in %q", line, text)
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		switch name {
		case fieldAbilityGUID:
			id, err := uuid.Parse(value)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			lf.AbilityID = id
		case fieldCurrentSortType:
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			lf.CurrentSortType = loot.SortType(n)
		case fieldCurrentPickupType:
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			lf.CurrentPickupType = loot.PickupType(n)
		}
	}
	return sc.Err()
}
