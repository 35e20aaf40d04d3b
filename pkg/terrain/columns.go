// Package terrain implements the column generation engine: a per-pass column
// buffer with height cursors, and the four layer algorithms that fill it.
//
// Generation is buffered: layers write material into [Columns] first, and the
// pipeline materializes the buffer into the live grid afterwards. Uniform and
// Padded layers stack relative to each column's running cursor; Vein stamps
// and Replace matches at absolute grid rows. That asymmetry is part of the
// schema contract, not an accident.
package terrain

import (
	"sort"

	"github.com/sandfall/strata/pkg/world"
)

// Entry is one buffered cell: a row offset above the pass baseline and the
// material to place there.
type Entry struct {
	Offset   int
	Material world.MaterialID
}

// Columns is the ephemeral per-pass generation buffer: for every column, the
// list of buffered cells plus a height cursor marking the next free offset.
// A Columns is created per pass and discarded after materialization.
type Columns struct {
	Width  int
	Cursor []int

	cells [][]Entry
}

// NewColumns allocates a buffer for width columns with all cursors at zero.
func NewColumns(width int) *Columns {
	if width < 0 {
		width = 0
	}
	return &Columns{
		Width:  width,
		Cursor: make([]int, width),
		cells:  make([][]Entry, width),
	}
}

// Set buffers material at (col, offset), overwriting any earlier entry at
// the same position. Writes outside the column range or below offset 0 are
// dropped.
func (c *Columns) Set(col, offset int, m world.MaterialID) {
	if col < 0 || col >= c.Width || offset < 0 {
		return
	}
	for i := range c.cells[col] {
		if c.cells[col][i].Offset == offset {
			c.cells[col][i].Material = m
			return
		}
	}
	c.cells[col] = append(c.cells[col], Entry{Offset: offset, Material: m})
}

// Column returns col's buffered entries sorted bottom offset upward, the
// order materialization writes them. The returned slice aliases the buffer.
func (c *Columns) Column(col int) []Entry {
	if col < 0 || col >= c.Width {
		return nil
	}
	entries := c.cells[col]
	sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	return entries
}

// Each calls fn for every buffered entry. The order is column-major and
// unsorted; use Column when write order matters.
func (c *Columns) Each(fn func(col int, e *Entry)) {
	for col := range c.cells {
		for i := range c.cells[col] {
			fn(col, &c.cells[col][i])
		}
	}
}

// MaxCursor returns the highest cursor across all columns, 0 for an empty
// buffer.
func (c *Columns) MaxCursor() int {
	max := 0
	for _, cur := range c.Cursor {
		if cur > max {
			max = cur
		}
	}
	return max
}

// Count returns the total number of buffered entries.
func (c *Columns) Count() int {
	n := 0
	for col := range c.cells {
		n += len(c.cells[col])
	}
	return n
}
