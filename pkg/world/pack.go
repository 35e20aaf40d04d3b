package world

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// packFile is the TOML shape of a material pack.
//
//	[[material]]
//	name    = "obsidian"
//	class   = "solid"      # solid | powder | liquid | gas
//	fall    = "none"       # none | sink | spread | rise
//	gravity = 0.0
//	loss    = 1.0
//	weight  = 120
type packFile struct {
	Material []packMaterial `toml:"material"`
}

type packMaterial struct {
	Name    string  `toml:"name"`
	Class   string  `toml:"class"`
	Fall    string  `toml:"fall"`
	Gravity float64 `toml:"gravity"`
	Loss    float64 `toml:"loss"`
	Weight  int     `toml:"weight"`
}

var classNames = map[string]Class{
	"solid":  ClassSolid,
	"powder": ClassPowder,
	"liquid": ClassLiquid,
	"gas":    ClassGas,
}

var fallNames = map[string]FallMode{
	"none":   FallNone,
	"sink":   FallSink,
	"spread": FallSpread,
	"rise":   FallRise,
}

// LoadPack reads a TOML material pack from path and registers every material
// it defines as a modded material in the table. It returns the number of
// materials registered.
func LoadPack(path string, table *Table) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pack: %w", err)
	}
	return ParsePack(data, table)
}

// ParsePack registers the materials defined in TOML data into table.
func ParsePack(data []byte, table *Table) (int, error) {
	var pack packFile
	if err := toml.Unmarshal(data, &pack); err != nil {
		return 0, fmt.Errorf("parse pack: %w", err)
	}

	for i, m := range pack.Material {
		if m.Name == "" {
			return 0, fmt.Errorf("material %d: name is required", i)
		}
		class, ok := classNames[m.Class]
		if !ok {
			return 0, fmt.Errorf("material %q: unknown class %q", m.Name, m.Class)
		}
		fall, ok := fallNames[m.Fall]
		if !ok {
			return 0, fmt.Errorf("material %q: unknown fall mode %q", m.Name, m.Fall)
		}
		table.Register(m.Name, Physics{
			Fall:    fall,
			Class:   class,
			Gravity: m.Gravity,
			Loss:    m.Loss,
			Weight:  m.Weight,
		})
	}
	return len(pack.Material), nil
}
