// Package command provides the command registry, parser, and built-in command definitions.
package command

import "codeberg.org/anaseto/gruid"

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryLoot     = "loot"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerMove      = "move"
	HandlerLook      = "look"
	HandlerLootList  = "lootlist"
	HandlerTravel    = "travel"
	HandlerAbilities = "abilities"
	HandlerUninstall = "uninstall"
	HandlerExplore   = "explore"
	HandlerPack      = "pack"
	HandlerQuit      = "quit"
	HandlerHelp      = "help"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (movement, world, loot, system).
	Category string
	// Handler maps to the session handler that runs the command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "north", Aliases: []string{"n"}, Help: "Step north (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Step south (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Step east (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Step west (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "northeast", Aliases: []string{"ne"}, Help: "Step northeast (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "northwest", Aliases: []string{"nw"}, Help: "Step northwest (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "southeast", Aliases: []string{"se"}, Help: "Step southeast (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "southwest", Aliases: []string{"sw"}, Help: "Step southwest (optionally N times)", Category: CategoryMovement, Handler: HandlerMove},

		{Name: "look", Aliases: []string{"l"}, Help: "Look around the zone", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "travel", Aliases: []string{"go"}, Help: "Follow your autotravel target", Category: CategoryWorld, Handler: HandlerTravel},

		{Name: "lootlist", Aliases: []string{"zll", "loot"}, Help: "List the loot you have seen in this zone", Category: CategoryLoot, Handler: HandlerLootList},
		{Name: "abilities", Aliases: []string{"ab"}, Help: "List your abilities", Category: CategoryLoot, Handler: HandlerAbilities},
		{Name: "explore", Aliases: []string{"ae", "autoexplore"}, Help: "Walk to and pick up the items your pickup mode wants", Category: CategoryLoot, Handler: HandlerExplore},
		{Name: "pack", Aliases: []string{"i", "inventory"}, Help: "List what you are carrying", Category: CategoryLoot, Handler: HandlerPack},
		{Name: "uninstall", Aliases: nil, Help: "Remove the loot list ability and every auto-get marker", Category: CategoryLoot, Handler: HandlerUninstall},

		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect from the game", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
	}
}

// directions maps movement command names to unit steps. Y grows southward.
var directions = map[string]gruid.Point{
	"north":     {X: 0, Y: -1},
	"south":     {X: 0, Y: 1},
	"east":      {X: 1, Y: 0},
	"west":      {X: -1, Y: 0},
	"northeast": {X: 1, Y: -1},
	"northwest": {X: -1, Y: -1},
	"southeast": {X: 1, Y: 1},
	"southwest": {X: -1, Y: 1},
}

// IsMovementCommand reports whether the command name is a movement direction.
func IsMovementCommand(name string) bool {
	_, ok := directions[name]
	return ok
}

// Direction returns the unit step for a canonical movement command name.
func Direction(name string) (gruid.Point, bool) {
	p, ok := directions[name]
	return p, ok
}
