package inventory

import "fmt"

// LiquidDef is a liquid from content/liquids. Pools and containers hold it
// by the dram.
type LiquidDef struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Color         string  `yaml:"color"`
	ValuePerDram  float64 `yaml:"value_per_dram"`
	WeightPerDram float64 `yaml:"weight_per_dram"`
	// Exotic liquids must be learned before their value is shown.
	Exotic bool `yaml:"exotic"`
}

// Validate reports every invalid field of d in one error.
func (d *LiquidDef) Validate() error {
	var p defProblems
	p.require(d.ID != "", "ID must not be empty")
	p.require(d.Name != "", "Name must not be empty")
	p.require(d.ValuePerDram >= 0, "ValuePerDram must be >= 0")
	p.require(d.WeightPerDram >= 0, "WeightPerDram must be >= 0")
	return p.err("liquid")
}

// LoadLiquids parses and validates every YAML file in dir as a LiquidDef.
func LoadLiquids(dir string) ([]*LiquidDef, error) {
	defs, err := loadDefs[LiquidDef](dir)
	if err != nil {
		return nil, fmt.Errorf("loading liquids: %w", err)
	}
	return defs, nil
}
