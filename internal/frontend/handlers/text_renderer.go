package handlers

import (
	"fmt"
	"strings"

	"codeberg.org/anaseto/gruid"

	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/session"
	"github.com/cory-johannsen/lootlist/internal/game/world"
)

// Sightings reports which entities the viewer has seen.
type Sightings interface {
	Seen(e *world.Entity) bool
}

// RenderZone formats the zone as a character map followed by the seen
// entities and the other players present. Unseen cells draw as '.', the
// viewer as '@'. Entities inside containers are never drawn.
func RenderZone(z *world.Zone, viewer gruid.Point, seen Sightings, others []string, color bool) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Paint(color, telnet.BrightYellow, z.Name))
	b.WriteString("\r\n")
	if z.Description != "" {
		b.WriteString(telnet.Paint(color, telnet.White, z.Description))
		b.WriteString("\r\n")
	}

	visible := make(map[gruid.Point]*world.Entity)
	var listed []*world.Entity
	for _, e := range z.Entities() {
		if e.Carried || !seen.Seen(e) {
			continue
		}
		listed = append(listed, e)
		if _, taken := visible[e.Pos]; !taken {
			visible[e.Pos] = e
		}
	}

	for y := range z.Size.Y {
		for x := range z.Size.X {
			p := gruid.Point{X: x, Y: y}
			switch e, ok := visible[p]; {
			case p == viewer:
				b.WriteString(telnet.Paint(color, telnet.BrightWhite, "@"))
			case ok:
				b.WriteString(telnet.RenderMarkup(fmt.Sprintf("{{%s|%c}}", e.Color, e.Glyph), color))
			default:
				b.WriteString(telnet.Paint(color, telnet.Dim, "."))
			}
		}
		b.WriteString("\r\n")
	}

	if len(listed) > 0 {
		b.WriteString(telnet.Paint(color, telnet.Cyan, "You see:"))
		b.WriteString("\r\n")
		for _, e := range listed {
			mark := " "
			if e.HasPart(lootfinder.PartAutoGetBeacon) {
				mark = "*"
			}
			fmt.Fprintf(&b, " %s %-24s %d,%d\r\n", mark, e.Name, e.Pos.X, e.Pos.Y)
		}
	}

	if len(others) > 0 {
		b.WriteString(telnet.Paint(color, telnet.Green, "Also here: "+strings.Join(others, ", ")))
		b.WriteString("\r\n")
	}
	return b.String()
}

// renderAbilities lists the player's abilities by name.
func renderAbilities(sess *session.PlayerSession) string {
	all := sess.Abilities.All()
	if len(all) == 0 {
		return telnet.Colorize(telnet.Dim, "You have no abilities.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Abilities:"))
	b.WriteString("\r\n")
	for _, a := range all {
		fmt.Fprintf(&b, "  %-20s %s\r\n", a.Name, telnet.Colorize(telnet.Dim, "["+a.Class+"]"))
	}
	return b.String()
}

// renderPack lists the backpack contents with the carried weight and value.
func renderPack(pack *inventory.Backpack, color bool) string {
	items := pack.Items()
	if len(items) == 0 {
		return telnet.Paint(color, telnet.Dim, "You are carrying nothing.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Paint(color, telnet.BrightWhite, "You are carrying:"))
	b.WriteString("\r\n")
	for _, it := range items {
		fmt.Fprintf(&b, "  %-24s %6.1f lbs  $%.0f\r\n", it.Name, it.Weight, it.Value)
	}
	fmt.Fprintf(&b, "%d/%d slots, %.1f/%.1f lbs, $%.0f total\r\n",
		pack.UsedSlots(), pack.MaxSlots, pack.TotalWeight(), pack.MaxWeight, pack.TotalValue())
	return b.String()
}
