// Package world defines the grid and material capabilities the terrain engine
// runs against, plus an in-memory implementation suitable for tests and for
// the CLI's offline grid dumps.
//
// The engine never reaches for host globals: everything it touches goes
// through the [World] interface, so a real particle simulation and the
// in-memory fake are interchangeable.
//
// Coordinates are column-major intuitive: x grows to the right, y grows
// upward, with y=0 the bottom row of the grid.
package world

// MaterialID identifies a material type. ID 0 is always the empty cell.
type MaterialID uint16

// Cell is one particle's stored state. Beyond the material type, each cell
// carries a secondary type register (Ctype), a flag word, and four general
// purpose data words. The embedding codec stores its magic word in Ctype,
// navigation bits in Flags, and payload bytes in Data.
type Cell struct {
	Material MaterialID `json:"m"`
	Ctype    uint16     `json:"ctype,omitempty"`
	Flags    uint16     `json:"flags,omitempty"`
	Data     [4]uint16  `json:"data,omitempty"`
}

// Rect is an axis-aligned region of the grid. X,Y is the bottom-left corner.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Area returns the number of cells covered by the rectangle.
func (r Rect) Area() int {
	return r.W * r.H
}

// Snapshot is an opaque restore point produced by a Grid. Callers hold it
// only to pass back to Restore; its contents are implementation-defined.
type Snapshot interface{}

// Grid is the particle-grid capability the engine consumes. Destructive
// operations (ClearRegion, bulk overwrites) are expected to be bracketed by
// Snapshot/Restore by the caller so they stay undoable.
type Grid interface {
	// Size returns the grid dimensions.
	Size() (w, h int)

	// Get returns the cell at (x, y). The second return is false when the
	// cell is empty or out of bounds.
	Get(x, y int) (Cell, bool)

	// Set writes a cell at (x, y). Writes outside the grid are ignored.
	Set(x, y int, c Cell)

	// Clear empties the cell at (x, y).
	Clear(x, y int)

	// ClearRegion empties every cell inside r.
	ClearRegion(r Rect)

	// Snapshot captures the current grid contents.
	Snapshot() Snapshot

	// Restore rewinds the grid to a previously captured snapshot.
	Restore(s Snapshot)
}

// Registry resolves material names and owns per-material physics.
type Registry interface {
	// Resolve maps a material name to its ID. Unknown names, and modded
	// names when the modded policy disallows them, return a
	// DISALLOWED_MATERIAL error.
	Resolve(name string) (MaterialID, error)

	// Name returns the registered name for an ID.
	Name(id MaterialID) (string, bool)

	// Physics returns the current physical attributes of a material.
	Physics(id MaterialID) (Physics, bool)

	// SetPhysics overwrites a material's physical attributes. It reports
	// whether the material exists.
	SetPhysics(id MaterialID, p Physics) bool

	// Marker returns the material reserved for embedded-data cells.
	Marker() MaterialID
}

// World combines the grid and registry capabilities.
type World interface {
	Grid
	Materials() Registry
}
