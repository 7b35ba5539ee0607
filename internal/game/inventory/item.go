package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Item kinds. Scenery cannot be picked up; artifacts must be identified
// before their value shows.
const (
	KindJunk     = "junk"
	KindTrade    = "trade"
	KindTool     = "tool"
	KindArtifact = "artifact"
	KindScenery  = "scenery"
)

var itemKinds = []string{KindJunk, KindTrade, KindTool, KindArtifact, KindScenery}

// ItemDef is an item template from content/items.
type ItemDef struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        string  `yaml:"kind"`
	Glyph       string  `yaml:"glyph"`
	Color       string  `yaml:"color"`
	Weight      float64 `yaml:"weight"`
	Value       float64 `yaml:"value"`
}

// Takeable reports whether instances of d can be picked up.
func (d *ItemDef) Takeable() bool { return d.Kind != KindScenery }

// KnownByDefault reports whether a player sees the value of d without
// identifying it first.
func (d *ItemDef) KnownByDefault() bool { return d.Kind != KindArtifact }

// GlyphRune returns the first rune of Glyph, or '?' when Glyph is empty.
func (d *ItemDef) GlyphRune() rune {
	r, _ := utf8.DecodeRuneInString(d.Glyph)
	if r == utf8.RuneError {
		return '?'
	}
	return r
}

// defProblems collects field violations for one definition.
type defProblems []error

func (p *defProblems) require(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Errorf(format, args...))
	}
}

func (p defProblems) err(what string) error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("%s validation failed: %w", what, errors.Join(p...))
}

// Validate reports every invalid field of d in one error.
func (d *ItemDef) Validate() error {
	var p defProblems
	p.require(d.ID != "", "ID must not be empty")
	p.require(d.Name != "", "Name must not be empty")
	p.require(slices.Contains(itemKinds, d.Kind), "Kind must be one of %s; got %q", strings.Join(itemKinds, ", "), d.Kind)
	p.require(utf8.RuneCountInString(d.Glyph) == 1, "Glyph must be a single character; got %q", d.Glyph)
	p.require(d.Weight >= 0, "Weight must be >= 0")
	p.require(d.Value >= 0, "Value must be >= 0")
	return p.err("item")
}

// LoadItems parses and validates every YAML file in dir as an ItemDef.
//
// Precondition: dir is a readable directory.
// Postcondition: on error no definitions are returned.
func LoadItems(dir string) ([]*ItemDef, error) {
	defs, err := loadDefs[ItemDef](dir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	return defs, nil
}

// validated is implemented by the pointer types of every YAML definition.
type validated[T any] interface {
	*T
	Validate() error
}

// loadDefs decodes each *.yaml or *.yml file directly in dir into a T and
// validates it. Files are read in name order.
func loadDefs[T any, PT validated[T]](dir string) ([]*T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var defs []*T
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		def := new(T)
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := PT(def).Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
