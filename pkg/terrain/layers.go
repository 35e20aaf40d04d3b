package terrain

import (
	"math/rand/v2"

	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

// NewRand returns a deterministic generator for a seed, so identical seeds
// reproduce identical terrain.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// Apply dispatches a layer to its algorithm. bottom is the pass baseline row
// (Vein and Replace work in absolute rows and need it to convert to buffer
// offsets); g is the live grid, consulted only by Replace with InExisting.
func Apply(layer preset.Layer, cols *Columns, g world.Grid, bottom int, rng *rand.Rand) {
	switch l := layer.(type) {
	case preset.Uniform:
		ApplyUniform(l, cols, rng)
	case preset.Padded:
		ApplyPadded(l, cols, rng)
	case preset.Vein:
		ApplyVein(l, cols, bottom, rng)
	case preset.Replace:
		ApplyReplace(l, cols, g, bottom, rng)
	}
}

// ApplyUniform adds thickness±variation/2 cells of material to every column,
// stacked above the cursor; the cursor advances by the amount added.
// Variation 0 makes the layer fully deterministic.
func ApplyUniform(l preset.Uniform, cols *Columns, rng *rand.Rand) {
	for col := 0; col < cols.Width; col++ {
		amount := l.Thickness
		if l.Variation > 0 {
			amount += rng.IntN(l.Variation+1) - l.Variation/2
		}
		if amount < 0 {
			amount = 0
		}
		base := cols.Cursor[col]
		for k := 0; k < amount; k++ {
			cols.Set(col, base+k, l.Material)
		}
		cols.Cursor[col] = base + amount
	}
}

// ApplyPadded raises every column's cursor to the buffer-wide maximum (the
// pad never lowers a cursor), then stacks like Uniform on the leveled
// surface. The padded rows below the old maximum are filled with the layer's
// material.
func ApplyPadded(l preset.Padded, cols *Columns, rng *rand.Rand) {
	max := cols.MaxCursor()
	for col := 0; col < cols.Width; col++ {
		for k := cols.Cursor[col]; k < max; k++ {
			cols.Set(col, k, l.Material)
		}
		cols.Cursor[col] = max
	}
	ApplyUniform(preset.Uniform(l), cols, rng)
}

// ApplyVein stamps Count diamond blobs at random absolute positions. Each
// blob picks a random column and a random row in [MinY, MaxY], then fills
// the cells of its Width×Height bounding box that pass the diamond
// membership test |dx|/w + |dy|/h < 0.5. Writes are absolute and may
// overwrite previously buffered cells; cursors are untouched.
func ApplyVein(l preset.Vein, cols *Columns, bottom int, rng *rand.Rand) {
	if cols.Width == 0 {
		return
	}
	w := float64(l.Width)
	h := float64(l.Height)

	for n := 0; n < l.Count; n++ {
		cx := rng.IntN(cols.Width)
		cy := l.MinY + rng.IntN(l.MaxY-l.MinY+1)

		for dy := -l.Height / 2; dy <= l.Height/2; dy++ {
			for dx := -l.Width / 2; dx <= l.Width/2; dx++ {
				if abs(dx)/w+abs(dy)/h >= 0.5 {
					continue
				}
				cols.Set(cx+dx, cy+dy-bottom, l.Material)
			}
		}
	}
}

// ApplyReplace retypes Old into New with probability Percent/100. With
// InExisting it scans the live grid (absolute coordinates, pre-pass
// particles only, since the buffer has not materialized yet); with InLayer
// it scans the buffer. The grid scan runs first so the two scans never see
// each other's writes. PreserveProps keeps a grid particle's registers;
// otherwise the particle is recreated from scratch.
func ApplyReplace(l preset.Replace, cols *Columns, g world.Grid, bottom int, rng *rand.Rand) {
	chance := l.Percent / 100

	if l.InExisting && g != nil {
		w, h := g.Size()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c, ok := g.Get(x, y)
				if !ok || c.Material != l.Old {
					continue
				}
				if rng.Float64() >= chance {
					continue
				}
				if l.PreserveProps {
					c.Material = l.New
					g.Set(x, y, c)
				} else {
					g.Clear(x, y)
					g.Set(x, y, world.Cell{Material: l.New})
				}
			}
		}
	}

	if l.InLayer {
		cols.Each(func(col int, e *Entry) {
			if e.Material != l.Old {
				return
			}
			if rng.Float64() < chance {
				e.Material = l.New
			}
		})
	}
}

func abs(v int) float64 {
	if v < 0 {
		v = -v
	}
	return float64(v)
}
