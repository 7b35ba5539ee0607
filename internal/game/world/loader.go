package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/anaseto/gruid"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/lootlist/internal/game/inventory"
)

// liquidGlyph is drawn for every liquid entity.
const liquidGlyph = '~'

// yamlZoneFile is the top-level YAML structure for zone files.
type yamlZoneFile struct {
	Zone yamlZone `yaml:"zone"`
}

// yamlZone is the YAML representation of a zone.
type yamlZone struct {
	ID                     string       `yaml:"id"`
	Name                   string       `yaml:"name"`
	Description            string       `yaml:"description"`
	Width                  int          `yaml:"width"`
	Height                 int          `yaml:"height"`
	Start                  yamlPoint    `yaml:"start"`
	ScriptDir              string       `yaml:"script_dir"`
	ScriptInstructionLimit int          `yaml:"script_instruction_limit"`
	Entities               []yamlEntity `yaml:"entities"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// yamlEntity places either an item (Item set) or a liquid (Liquid set).
type yamlEntity struct {
	ID       string         `yaml:"id"`
	Item     string         `yaml:"item"`
	Liquid   string         `yaml:"liquid"`
	Volume   int            `yaml:"volume"`
	Pool     bool           `yaml:"pool"`
	X        int            `yaml:"x"`
	Y        int            `yaml:"y"`
	Carried  bool           `yaml:"carried"`
	Parts    []string       `yaml:"parts"`
	IntProps map[string]int `yaml:"int_props"`
}

// LoadZoneFromFile reads and validates a single zone YAML file.
//
// Precondition: path must point to a valid YAML zone file; reg must be non-nil.
// Postcondition: Returns a validated Zone or a non-nil error.
func LoadZoneFromFile(path string, reg *inventory.Registry) (*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zone file %s: %w", path, err)
	}
	return LoadZoneFromBytes(data, reg)
}

// LoadZoneFromBytes parses a zone from YAML bytes, resolving every entity
// through reg.
//
// Precondition: data must be valid YAML conforming to the zone schema.
// Postcondition: Returns a validated Zone or a non-nil error.
func LoadZoneFromBytes(data []byte, reg *inventory.Registry) (*Zone, error) {
	var file yamlZoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}

	yz := file.Zone
	zone := NewZone(yz.ID, yz.Name, gruid.Point{X: yz.Width, Y: yz.Height})
	zone.Description = strings.TrimSpace(yz.Description)
	zone.Start = gruid.Point{X: yz.Start.X, Y: yz.Start.Y}
	zone.ScriptDir = yz.ScriptDir
	zone.ScriptInstructionLimit = yz.ScriptInstructionLimit
	if err := zone.Validate(); err != nil {
		return nil, fmt.Errorf("validating zone: %w", err)
	}

	for i, ye := range yz.Entities {
		e, err := convertYAMLEntity(ye, reg)
		if err != nil {
			return nil, fmt.Errorf("zone %q: entity %d: %w", zone.ID, i, err)
		}
		if err := zone.Add(e); err != nil {
			return nil, fmt.Errorf("validating zone: %w", err)
		}
	}
	return zone, nil
}

// LoadZonesFromDir loads all YAML files in a directory as zones.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated zones or the first error encountered.
func LoadZonesFromDir(dir string, reg *inventory.Registry) ([]*Zone, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading zone directory %s: %w", dir, err)
	}

	var zones []*Zone
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		zone, err := LoadZoneFromFile(filepath.Join(dir, name), reg)
		if err != nil {
			return nil, fmt.Errorf("loading zone from %s: %w", name, err)
		}
		zones = append(zones, zone)
	}

	if len(zones) == 0 {
		return nil, fmt.Errorf("no zone files found in %s", dir)
	}

	return zones, nil
}

// convertYAMLEntity builds an Entity from its placement and definition.
func convertYAMLEntity(ye yamlEntity, reg *inventory.Registry) (*Entity, error) {
	e := &Entity{
		ID:      ye.ID,
		Pos:     gruid.Point{X: ye.X, Y: ye.Y},
		Carried: ye.Carried,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	switch {
	case ye.Item != "" && ye.Liquid != "":
		return nil, fmt.Errorf("entity %q sets both item and liquid", e.ID)
	case ye.Item != "":
		def, ok := reg.Item(ye.Item)
		if !ok {
			return nil, fmt.Errorf("unknown item %q", ye.Item)
		}
		e.DefID = def.ID
		e.Name = def.Name
		e.Glyph = def.GlyphRune()
		e.Color = def.Color
		e.Takeable = def.Takeable()
		e.Value = def.Value
		e.Weight = def.Weight
	case ye.Liquid != "":
		def, ok := reg.Liquid(ye.Liquid)
		if !ok {
			return nil, fmt.Errorf("unknown liquid %q", ye.Liquid)
		}
		if ye.Volume < 0 {
			return nil, fmt.Errorf("liquid %q: volume must be >= 0", ye.Liquid)
		}
		e.DefID = def.ID
		e.Name = def.Name
		if ye.Pool {
			e.Name = "pool of " + def.Name
		}
		e.Glyph = liquidGlyph
		e.Color = def.Color
		e.Value = def.ValuePerDram * float64(ye.Volume)
		e.Weight = def.WeightPerDram * float64(ye.Volume)
		e.Liquid = &LiquidVolume{LiquidID: def.ID, Volume: ye.Volume, Pool: ye.Pool}
	default:
		return nil, fmt.Errorf("entity %q sets neither item nor liquid", e.ID)
	}

	for _, p := range ye.Parts {
		e.AddPart(p)
	}
	for k, v := range ye.IntProps {
		e.SetIntProperty(k, v)
	}
	return e, nil
}
