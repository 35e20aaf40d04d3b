package world

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Dump is the JSON shape of a saved grid. Cells are stored sparsely: empty
// cells are omitted, which keeps dumps of mostly-air worlds small.
type Dump struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []DumpCell `json:"cells"`
}

// DumpCell is one occupied cell with its grid position.
type DumpCell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Cell
}

// DumpOf collects the world's occupied cells into a Dump.
func DumpOf(m *Mem) Dump {
	out := Dump{Width: m.w, Height: m.h}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if c, ok := m.Get(x, y); ok {
				out.Cells = append(out.Cells, DumpCell{X: x, Y: y, Cell: c})
			}
		}
	}
	return out
}

// WriteJSON encodes the world's grid as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(m *Mem, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(DumpOf(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a grid dump from r into a fresh in-memory world.
// Cells outside the declared dimensions are rejected.
func ReadJSON(r io.Reader) (*Mem, error) {
	var in Dump
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if in.Width <= 0 || in.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", in.Width, in.Height)
	}

	m := NewMem(in.Width, in.Height)
	for _, c := range in.Cells {
		if c.X < 0 || c.X >= in.Width || c.Y < 0 || c.Y >= in.Height {
			return nil, fmt.Errorf("cell (%d,%d) outside %dx%d grid", c.X, c.Y, in.Width, in.Height)
		}
		m.Set(c.X, c.Y, c.Cell)
	}
	return m, nil
}

// Export writes a grid dump to a JSON file at path.
func Export(m *Mem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// Import reads a grid dump file at path into a fresh in-memory world.
func Import(path string) (*Mem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
