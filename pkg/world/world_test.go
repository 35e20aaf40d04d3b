package world

import (
	"bytes"
	"testing"

	"github.com/sandfall/strata/pkg/errors"
)

func TestMemGetSet(t *testing.T) {
	m := NewMem(8, 8)

	if _, ok := m.Get(3, 3); ok {
		t.Error("Get on empty cell returned ok")
	}

	m.Set(3, 3, Cell{Material: MatSand, Data: [4]uint16{1, 2, 3, 4}})
	c, ok := m.Get(3, 3)
	if !ok {
		t.Fatal("Get after Set returned !ok")
	}
	if c.Material != MatSand || c.Data[2] != 3 {
		t.Errorf("Get = %+v, want sand with data", c)
	}

	m.Clear(3, 3)
	if _, ok := m.Get(3, 3); ok {
		t.Error("Get after Clear returned ok")
	}
}

func TestMemOutOfBounds(t *testing.T) {
	m := NewMem(4, 4)

	// Writes outside the grid are ignored, reads miss.
	m.Set(-1, 0, Cell{Material: MatStone})
	m.Set(4, 4, Cell{Material: MatStone})
	if _, ok := m.Get(-1, 0); ok {
		t.Error("Get(-1,0) returned ok")
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d after out-of-bounds writes, want 0", m.Count())
	}
}

func TestMemSnapshotRestore(t *testing.T) {
	m := NewMem(4, 4)
	m.Set(1, 1, Cell{Material: MatStone})

	snap := m.Snapshot()
	m.Set(2, 2, Cell{Material: MatWater})
	m.Clear(1, 1)

	m.Restore(snap)
	if _, ok := m.Get(2, 2); ok {
		t.Error("cell written after snapshot survived restore")
	}
	if c, ok := m.Get(1, 1); !ok || c.Material != MatStone {
		t.Error("cell cleared after snapshot was not restored")
	}
}

func TestMemClearRegion(t *testing.T) {
	m := NewMem(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.Set(x, y, Cell{Material: MatDirt})
		}
	}

	m.ClearRegion(Rect{X: 2, Y: 2, W: 3, H: 3})

	if m.Count() != 64-9 {
		t.Errorf("Count = %d, want %d", m.Count(), 64-9)
	}
	if _, ok := m.Get(2, 2); ok {
		t.Error("cell inside cleared region still present")
	}
	if _, ok := m.Get(5, 5); !ok {
		t.Error("cell outside cleared region was cleared")
	}
}

func TestTableResolve(t *testing.T) {
	tbl := NewTable()

	id, err := tbl.Resolve("sand")
	if err != nil {
		t.Fatalf("Resolve(sand) error: %v", err)
	}
	if id != MatSand {
		t.Errorf("Resolve(sand) = %d, want %d", id, MatSand)
	}

	if _, err := tbl.Resolve("unobtainium"); !errors.Is(err, errors.ErrCodeDisallowed) {
		t.Errorf("Resolve(unknown) error = %v, want DISALLOWED_MATERIAL", err)
	}
}

func TestTableModdedPolicy(t *testing.T) {
	tbl := NewTable()
	id := tbl.Register("obsidian", Physics{Class: ClassSolid, Loss: 1, Weight: 120})
	if id < ModdedBase {
		t.Fatalf("modded ID %d below ModdedBase", id)
	}

	if _, err := tbl.Resolve("obsidian"); !errors.Is(err, errors.ErrCodeDisallowed) {
		t.Errorf("modded resolve with policy off error = %v, want DISALLOWED_MATERIAL", err)
	}

	tbl.AllowModded = true
	got, err := tbl.Resolve("obsidian")
	if err != nil {
		t.Fatalf("modded resolve with policy on error: %v", err)
	}
	if got != id {
		t.Errorf("Resolve = %d, want %d", got, id)
	}
}

func TestTableSetPhysics(t *testing.T) {
	tbl := NewTable()

	p, ok := tbl.Physics(MatStone)
	if !ok {
		t.Fatal("Physics(stone) missing")
	}
	if p.Fall != FallNone || p.Class != ClassSolid {
		t.Errorf("stone physics = %+v, want static solid", p)
	}

	if !tbl.SetPhysics(MatStone, Granular()) {
		t.Fatal("SetPhysics(stone) = false")
	}
	p, _ = tbl.Physics(MatStone)
	if p.Fall != FallSink || p.Class != ClassPowder {
		t.Errorf("overridden physics = %+v, want granular", p)
	}
}

func TestParsePack(t *testing.T) {
	src := []byte(`
[[material]]
name    = "obsidian"
class   = "solid"
fall    = "none"
gravity = 0.0
loss    = 1.0
weight  = 120

[[material]]
name    = "ash"
class   = "powder"
fall    = "sink"
gravity = 0.1
loss    = 0.8
weight  = 5
`)

	tbl := NewTable()
	n, err := ParsePack(src, tbl)
	if err != nil {
		t.Fatalf("ParsePack error: %v", err)
	}
	if n != 2 {
		t.Errorf("registered %d materials, want 2", n)
	}

	tbl.AllowModded = true
	id, err := tbl.Resolve("ash")
	if err != nil {
		t.Fatalf("Resolve(ash): %v", err)
	}
	p, _ := tbl.Physics(id)
	if p.Class != ClassPowder || p.Weight != 5 {
		t.Errorf("ash physics = %+v", p)
	}
}

func TestParsePackErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing name", "[[material]]\nclass = \"solid\"\nfall = \"none\"\n"},
		{"bad class", "[[material]]\nname = \"x\"\nclass = \"plasma\"\nfall = \"none\"\n"},
		{"bad fall", "[[material]]\nname = \"x\"\nclass = \"solid\"\nfall = \"hover\"\n"},
		{"bad toml", "[[material"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePack([]byte(tt.src), NewTable()); err == nil {
				t.Error("ParsePack succeeded, want error")
			}
		})
	}
}

func TestDumpRoundTrip(t *testing.T) {
	m := NewMem(6, 5)
	m.Set(0, 0, Cell{Material: MatStone})
	m.Set(5, 4, Cell{Material: MatMarker, Ctype: 0x5EED, Flags: 3, Data: [4]uint16{10, 20, 30, 40}})

	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	w, h := got.Size()
	if w != 6 || h != 5 {
		t.Fatalf("size = %dx%d, want 6x5", w, h)
	}
	c, ok := got.Get(5, 4)
	if !ok {
		t.Fatal("marker cell missing after round trip")
	}
	if c.Ctype != 0x5EED || c.Data[3] != 40 {
		t.Errorf("marker cell = %+v", c)
	}
	if got.Count() != 2 {
		t.Errorf("Count = %d, want 2", got.Count())
	}
}

func TestReadJSONRejectsBadDumps(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"malformed", "{"},
		{"zero size", `{"width":0,"height":0,"cells":[]}`},
		{"cell out of bounds", `{"width":2,"height":2,"cells":[{"x":5,"y":0,"m":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(bytes.NewReader([]byte(tt.src))); err == nil {
				t.Error("ReadJSON succeeded, want error")
			}
		})
	}
}
