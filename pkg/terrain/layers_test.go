package terrain

import (
	"testing"

	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

func TestColumnsSetOverwrite(t *testing.T) {
	cols := NewColumns(4)
	cols.Set(1, 5, world.MatStone)
	cols.Set(1, 5, world.MatSand)
	cols.Set(1, 2, world.MatDirt)

	entries := cols.Column(1)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (overwrite collapsed)", len(entries))
	}
	if entries[0].Offset != 2 || entries[1].Offset != 5 {
		t.Errorf("entries not sorted by offset: %+v", entries)
	}
	if entries[1].Material != world.MatSand {
		t.Errorf("overwritten entry material = %d, want sand", entries[1].Material)
	}
}

func TestColumnsDropsInvalidWrites(t *testing.T) {
	cols := NewColumns(2)
	cols.Set(-1, 0, world.MatStone)
	cols.Set(2, 0, world.MatStone)
	cols.Set(0, -3, world.MatStone)

	if cols.Count() != 0 {
		t.Errorf("Count = %d after invalid writes, want 0", cols.Count())
	}
}

func TestUniformDeterministic(t *testing.T) {
	// Variation 0 removes randomness: exactly 10 cells per column at
	// offsets 0..9.
	cols := NewColumns(4)
	ApplyUniform(preset.Uniform{Material: world.MatStone, Thickness: 10, Variation: 0}, cols, NewRand(1))

	for col := 0; col < 4; col++ {
		entries := cols.Column(col)
		if len(entries) != 10 {
			t.Fatalf("column %d has %d cells, want 10", col, len(entries))
		}
		for i, e := range entries {
			if e.Offset != i || e.Material != world.MatStone {
				t.Errorf("column %d entry %d = %+v", col, i, e)
			}
		}
		if cols.Cursor[col] != 10 {
			t.Errorf("column %d cursor = %d, want 10", col, cols.Cursor[col])
		}
	}
}

func TestUniformVariationBounds(t *testing.T) {
	cols := NewColumns(64)
	ApplyUniform(preset.Uniform{Material: world.MatDirt, Thickness: 10, Variation: 4}, cols, NewRand(7))

	for col, cur := range cols.Cursor {
		if cur < 8 || cur > 12 {
			t.Errorf("column %d amount = %d, want within 10±2", col, cur)
		}
	}
}

func TestUniformSeedReproducible(t *testing.T) {
	a := NewColumns(16)
	b := NewColumns(16)
	layer := preset.Uniform{Material: world.MatSand, Thickness: 6, Variation: 6}
	ApplyUniform(layer, a, NewRand(42))
	ApplyUniform(layer, b, NewRand(42))

	for col := 0; col < 16; col++ {
		if a.Cursor[col] != b.Cursor[col] {
			t.Fatalf("column %d cursors differ: %d vs %d", col, a.Cursor[col], b.Cursor[col])
		}
	}
}

func TestPaddedNeverLowersCursor(t *testing.T) {
	cols := NewColumns(4)
	cols.Cursor[0] = 3
	cols.Cursor[1] = 7
	cols.Cursor[2] = 5

	before := make([]int, 4)
	copy(before, cols.Cursor)

	ApplyPadded(preset.Padded{Material: world.MatClay, Thickness: 2, Variation: 0}, cols, NewRand(1))

	for col := 0; col < 4; col++ {
		if cols.Cursor[col] < before[col] {
			t.Errorf("column %d cursor dropped from %d to %d", col, before[col], cols.Cursor[col])
		}
		// Max was 7, plus thickness 2 on the level surface.
		if cols.Cursor[col] != 9 {
			t.Errorf("column %d cursor = %d, want 9", col, cols.Cursor[col])
		}
	}

	// The shortest column was padded from 0 up to the old maximum before
	// the uniform stack on top.
	entries := cols.Column(3)
	if len(entries) != 9 {
		t.Errorf("column 3 has %d cells, want 9 (7 pad + 2 stack)", len(entries))
	}
}

func TestVeinStampsWithinBounds(t *testing.T) {
	const bottom = 0
	layer := preset.Vein{Material: world.MatGravel, MinY: 20, MaxY: 30, Width: 8, Height: 4, Count: 5}

	cols := NewColumns(64)
	ApplyVein(layer, cols, bottom, NewRand(9))

	if cols.Count() == 0 {
		t.Fatal("vein stamped no cells")
	}
	cols.Each(func(col int, e *Entry) {
		if e.Material != world.MatGravel {
			t.Errorf("entry material = %d", e.Material)
		}
		// Center row within [MinY, MaxY], blob extends at most Height/2.
		if e.Offset < layer.MinY-layer.Height/2 || e.Offset > layer.MaxY+layer.Height/2 {
			t.Errorf("entry offset %d outside vein band", e.Offset)
		}
	})

	// Cursors are untouched by absolute-coordinate layers.
	for col, cur := range cols.Cursor {
		if cur != 0 {
			t.Errorf("column %d cursor = %d, want 0", col, cur)
		}
	}
}

func TestVeinDiamondShape(t *testing.T) {
	// A single blob centered by a pinned RNG: every written cell must pass
	// the diamond membership test against some center in the band.
	layer := preset.Vein{Material: world.MatGravel, MinY: 16, MaxY: 16, Width: 10, Height: 6, Count: 1}
	cols := NewColumns(32)
	ApplyVein(layer, cols, 0, NewRand(3))

	// All cells share the single center row 16; recover dx/dy from it.
	cols.Each(func(col int, e *Entry) {
		dy := e.Offset - 16
		if dy < -3 || dy > 3 {
			t.Errorf("cell at offset %d outside height bound", e.Offset)
		}
	})

	// The widest row of a 10x6 diamond is strictly narrower than the
	// bounding box: |dx|/10 < 0.5 means at most 9 cells wide.
	rowWidth := map[int]int{}
	cols.Each(func(col int, e *Entry) { rowWidth[e.Offset]++ })
	for off, n := range rowWidth {
		if n > 9 {
			t.Errorf("row %d has %d cells, diamond max is 9", off, n)
		}
	}
}

func TestVeinClipsNegativeOffsets(t *testing.T) {
	// A vein band below the pass baseline buffers nothing under offset 0.
	layer := preset.Vein{Material: world.MatGravel, MinY: 0, MaxY: 2, Width: 6, Height: 6, Count: 10}
	cols := NewColumns(16)
	ApplyVein(layer, cols, 10, NewRand(5))

	cols.Each(func(col int, e *Entry) {
		if e.Offset < 0 {
			t.Errorf("buffered negative offset %d", e.Offset)
		}
	})
}

func TestReplaceInLayer(t *testing.T) {
	layer := preset.Replace{Old: world.MatDirt, New: world.MatSand, Percent: 100, InLayer: true}

	cols := NewColumns(4)
	for col := 0; col < 4; col++ {
		cols.Set(col, 0, world.MatDirt)
		cols.Set(col, 1, world.MatStone)
	}

	ApplyReplace(layer, cols, nil, 0, NewRand(1))

	cols.Each(func(col int, e *Entry) {
		if e.Offset == 0 && e.Material != world.MatSand {
			t.Errorf("column %d dirt not replaced", col)
		}
		if e.Offset == 1 && e.Material != world.MatStone {
			t.Errorf("column %d stone was touched", col)
		}
	})
}

func TestReplaceZeroPercent(t *testing.T) {
	layer := preset.Replace{Old: world.MatDirt, New: world.MatSand, Percent: 0, InLayer: true}

	cols := NewColumns(4)
	cols.Set(0, 0, world.MatDirt)
	ApplyReplace(layer, cols, nil, 0, NewRand(1))

	if e := cols.Column(0)[0]; e.Material != world.MatDirt {
		t.Errorf("material = %d, want dirt untouched at 0%%", e.Material)
	}
}

func TestReplaceInExisting(t *testing.T) {
	g := world.NewMem(4, 4)
	g.Set(1, 1, world.Cell{Material: world.MatDirt, Data: [4]uint16{7, 8, 9, 10}})
	g.Set(2, 2, world.Cell{Material: world.MatStone})

	layer := preset.Replace{
		Old: world.MatDirt, New: world.MatSand,
		Percent: 100, InExisting: true, PreserveProps: true,
	}
	ApplyReplace(layer, NewColumns(4), g, 0, NewRand(1))

	c, ok := g.Get(1, 1)
	if !ok || c.Material != world.MatSand {
		t.Fatalf("cell = %+v, want retyped to sand", c)
	}
	if c.Data[0] != 7 {
		t.Error("preserveProps lost particle registers")
	}
	if c, _ := g.Get(2, 2); c.Material != world.MatStone {
		t.Error("non-matching material was touched")
	}
}

func TestReplaceInExistingDestroysProps(t *testing.T) {
	g := world.NewMem(4, 4)
	g.Set(1, 1, world.Cell{Material: world.MatDirt, Data: [4]uint16{7, 8, 9, 10}})

	layer := preset.Replace{
		Old: world.MatDirt, New: world.MatSand,
		Percent: 100, InExisting: true, PreserveProps: false,
	}
	ApplyReplace(layer, NewColumns(4), g, 0, NewRand(1))

	c, ok := g.Get(1, 1)
	if !ok || c.Material != world.MatSand {
		t.Fatalf("cell = %+v, want recreated as sand", c)
	}
	if c.Data != [4]uint16{} {
		t.Error("destroy-and-recreate kept old registers")
	}
}

func TestReplaceBothScansInOneLayer(t *testing.T) {
	g := world.NewMem(2, 2)
	g.Set(0, 0, world.Cell{Material: world.MatDirt})

	cols := NewColumns(2)
	cols.Set(1, 0, world.MatDirt)

	layer := preset.Replace{
		Old: world.MatDirt, New: world.MatSand,
		Percent: 100, InExisting: true, InLayer: true, PreserveProps: true,
	}
	ApplyReplace(layer, cols, g, 0, NewRand(1))

	if c, _ := g.Get(0, 0); c.Material != world.MatSand {
		t.Error("grid particle not replaced")
	}
	if e := cols.Column(1)[0]; e.Material != world.MatSand {
		t.Error("buffered cell not replaced")
	}
}
