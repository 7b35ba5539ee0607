package lootfinder

import "github.com/cory-johannsen/lootlist/internal/game/world"

// Entity parts and properties read or written by the loot list.
const (
	// PartAutoGetBeacon marks an item for automatic pickup by autoexplore.
	PartAutoGetBeacon = "AutoGetBeacon"
	// PartNoLootList hides an entity from the loot list.
	PartNoLootList = "NoLootList"
	// PropAutoexploreAutoget is autoexplore's own per-item pickup override.
	// It conflicts with the beacon and is cleared when the beacon is attached.
	PropAutoexploreAutoget = "AutoexploreActionAutoget"
)

// FilterZoneItems partitions entities into lootable items, open liquid pools
// and everything else. seen reports whether the player has seen an entity.
//
// Postcondition: every entity lands in exactly one partition and input order
// is preserved within each.
func FilterZoneItems(entities []*world.Entity, seen func(*world.Entity) bool) (takeable, liquids, ignored []*world.Entity) {
	for _, e := range entities {
		switch {
		case e.HasPart(PartNoLootList) || !seen(e):
			ignored = append(ignored, e)
		case e.IsPool():
			liquids = append(liquids, e)
		case e.Takeable && !e.Carried:
			takeable = append(takeable, e)
		default:
			ignored = append(ignored, e)
		}
	}
	return takeable, liquids, ignored
}
