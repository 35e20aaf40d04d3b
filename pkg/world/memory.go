package world

// Mem is an in-memory World backed by a row-major cell slice. It is the
// implementation the CLI and tests use; a live particle engine would provide
// its own Grid and reuse the same Registry.
type Mem struct {
	w, h  int
	cells []Cell
	table *Table
}

// NewMem allocates an empty in-memory world with the builtin material table.
func NewMem(w, h int) *Mem {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Mem{
		w:     w,
		h:     h,
		cells: make([]Cell, w*h),
		table: NewTable(),
	}
}

// NewMemWithTable allocates an in-memory world sharing an existing registry.
func NewMemWithTable(w, h int, table *Table) *Mem {
	m := NewMem(w, h)
	m.table = table
	return m
}

// Size implements Grid.
func (m *Mem) Size() (int, int) { return m.w, m.h }

// Materials implements World.
func (m *Mem) Materials() Registry { return m.table }

// Table returns the concrete registry for callers that need to register
// modded materials or list names.
func (m *Mem) Table() *Table { return m.table }

func (m *Mem) index(x, y int) (int, bool) {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return 0, false
	}
	return y*m.w + x, true
}

// Get implements Grid.
func (m *Mem) Get(x, y int) (Cell, bool) {
	i, ok := m.index(x, y)
	if !ok || m.cells[i].Material == MatEmpty {
		return Cell{}, false
	}
	return m.cells[i], true
}

// Set implements Grid.
func (m *Mem) Set(x, y int, c Cell) {
	if i, ok := m.index(x, y); ok {
		m.cells[i] = c
	}
}

// Clear implements Grid.
func (m *Mem) Clear(x, y int) {
	if i, ok := m.index(x, y); ok {
		m.cells[i] = Cell{}
	}
}

// ClearRegion implements Grid.
func (m *Mem) ClearRegion(r Rect) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			m.Clear(x, y)
		}
	}
}

// memSnapshot is a full copy of the cell slice. Grids of the sizes this
// module deals with are small enough that copying beats bookkeeping.
type memSnapshot struct {
	w, h  int
	cells []Cell
}

// Snapshot implements Grid.
func (m *Mem) Snapshot() Snapshot {
	s := memSnapshot{w: m.w, h: m.h, cells: make([]Cell, len(m.cells))}
	copy(s.cells, m.cells)
	return s
}

// Restore implements Grid. Snapshots from a different grid size are ignored.
func (m *Mem) Restore(snap Snapshot) {
	s, ok := snap.(memSnapshot)
	if !ok || s.w != m.w || s.h != m.h {
		return
	}
	copy(m.cells, s.cells)
}

// Count returns the number of non-empty cells, a convenience for tests and
// generation stats.
func (m *Mem) Count() int {
	n := 0
	for i := range m.cells {
		if m.cells[i].Material != MatEmpty {
			n++
		}
	}
	return n
}

var _ World = (*Mem)(nil)
