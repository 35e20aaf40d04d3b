package world

import (
	"sort"
	"sync"

	"github.com/sandfall/strata/pkg/errors"
)

// Class is a material's broad physical category.
type Class uint8

// Material classes.
const (
	ClassSolid Class = iota
	ClassPowder
	ClassLiquid
	ClassGas
)

// FallMode selects the movement routine a material uses each simulation step.
type FallMode uint8

// Fall modes.
const (
	FallNone   FallMode = iota // static, never moves
	FallSink                   // falls straight down, piles diagonally
	FallSpread                 // falls and levels out sideways
	FallRise                   // drifts upward
)

// Physics holds the attributes the pass pipeline snapshots and overrides when
// a pass grants static solids temporary granular behavior.
type Physics struct {
	Fall    FallMode
	Class   Class
	Gravity float64
	Loss    float64
	Weight  int
}

// Granular returns the physics applied to a static solid while a pass with
// addGravityToSolids is settling. The values mimic a heavy powder.
func Granular() Physics {
	return Physics{
		Fall:    FallSink,
		Class:   ClassPowder,
		Gravity: 0.3,
		Loss:    0.95,
		Weight:  90,
	}
}

// Builtin material IDs. Empty must stay 0; Marker is reserved exclusively for
// embedded-data cells and never appears in generated terrain.
const (
	MatEmpty MaterialID = iota
	MatStone
	MatDirt
	MatSand
	MatGravel
	MatClay
	MatWater
	MatLava
	MatWood
	MatIce
	MatSnow
	MatBrick
	MatMarker
)

// ModdedBase is the first ID handed out to materials loaded from packs.
// Everything at or above this ID is subject to the modded-material policy.
const ModdedBase MaterialID = 256

type materialDef struct {
	name    string
	physics Physics
}

var builtins = map[MaterialID]materialDef{
	MatStone:  {"stone", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 100}},
	MatDirt:   {"dirt", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 80}},
	MatSand:   {"sand", Physics{Fall: FallSink, Class: ClassPowder, Gravity: 0.25, Loss: 0.95, Weight: 60}},
	MatGravel: {"gravel", Physics{Fall: FallSink, Class: ClassPowder, Gravity: 0.35, Loss: 0.9, Weight: 85}},
	MatClay:   {"clay", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 70}},
	MatWater:  {"water", Physics{Fall: FallSpread, Class: ClassLiquid, Gravity: 0.2, Loss: 0.99, Weight: 30}},
	MatLava:   {"lava", Physics{Fall: FallSpread, Class: ClassLiquid, Gravity: 0.15, Loss: 0.99, Weight: 45}},
	MatWood:   {"wood", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 40}},
	MatIce:    {"ice", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 35}},
	MatSnow:   {"snow", Physics{Fall: FallSink, Class: ClassPowder, Gravity: 0.1, Loss: 0.85, Weight: 10}},
	MatBrick:  {"brick", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 100}},
	MatMarker: {"preset-data", Physics{Fall: FallNone, Class: ClassSolid, Gravity: 0, Loss: 1, Weight: 100}},
}

// Table is the standard Registry implementation: the builtin material set
// plus any modded materials registered from packs. Physics updates are
// guarded by a mutex because the pipeline mutates them while the host may be
// reading names for display.
type Table struct {
	mu          sync.Mutex
	byName      map[string]MaterialID
	defs        map[MaterialID]materialDef
	nextModded  MaterialID
	AllowModded bool
}

// NewTable builds a registry containing only the builtin materials.
func NewTable() *Table {
	t := &Table{
		byName:     make(map[string]MaterialID, len(builtins)),
		defs:       make(map[MaterialID]materialDef, len(builtins)),
		nextModded: ModdedBase,
	}
	for id, def := range builtins {
		t.byName[def.name] = id
		t.defs[id] = def
	}
	return t
}

// Resolve implements Registry.
func (t *Table) Resolve(name string) (MaterialID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.byName[name]
	if !ok {
		return 0, errors.New(errors.ErrCodeDisallowed, "unknown material %q", name)
	}
	if id >= ModdedBase && !t.AllowModded {
		return 0, errors.New(errors.ErrCodeDisallowed, "modded material %q is not allowed", name)
	}
	return id, nil
}

// Name implements Registry.
func (t *Table) Name(id MaterialID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, ok := t.defs[id]
	return def.name, ok
}

// Physics implements Registry.
func (t *Table) Physics(id MaterialID) (Physics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, ok := t.defs[id]
	return def.physics, ok
}

// SetPhysics implements Registry.
func (t *Table) SetPhysics(id MaterialID, p Physics) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	def, ok := t.defs[id]
	if !ok {
		return false
	}
	def.physics = p
	t.defs[id] = def
	return true
}

// Marker implements Registry.
func (t *Table) Marker() MaterialID {
	return MatMarker
}

// Register adds a modded material and returns its assigned ID. Registering a
// name that already exists overwrites its physics and keeps the original ID.
func (t *Table) Register(name string, p Physics) MaterialID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byName[name]; ok {
		def := t.defs[id]
		def.physics = p
		t.defs[id] = def
		return id
	}
	id := t.nextModded
	t.nextModded++
	t.byName[name] = id
	t.defs[id] = materialDef{name: name, physics: p}
	return id
}

// Names returns every registered material name in sorted order.
func (t *Table) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ Registry = (*Table)(nil)
