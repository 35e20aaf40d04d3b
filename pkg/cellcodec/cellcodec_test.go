package cellcodec

import (
	"bytes"
	"context"
	"testing"

	"github.com/sandfall/strata/pkg/cache"
	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/world"
)

const testPreset = `{"versionMajor":1,"versionMinor":2,"passes":[{"bottom":0,"settleTime":30,"layers":[{"mode":1,"type":"stone","thickness":8,"variation":4}]}]}`

func encodeTestPreset(t *testing.T, w world.World, box world.Rect) {
	t.Helper()
	enc := &Encoder{World: w}
	if err := enc.Encode(context.Background(), "bedrock", []byte(testPreset), box); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 3, Y: 5, W: 8, H: 8}
	encodeTestPreset(t, w, box)

	dec := &Decoder{World: w}
	res, err := dec.Decode(context.Background(), box.X, box.Y)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res == nil {
		t.Fatal("Decode returned no result for an embedded header")
	}
	if res.Name != "bedrock" {
		t.Errorf("name = %q, want %q", res.Name, "bedrock")
	}
	if !bytes.Equal(res.Data, []byte(testPreset)) {
		t.Errorf("payload not byte-for-byte:\n got %s\nwant %s", res.Data, testPreset)
	}
	if !res.Outcome.OK {
		t.Errorf("embedded preset failed validation: %v", res.Outcome.Err)
	}
	if res.HeaderX != box.X || res.HeaderY != box.Y {
		t.Errorf("header at (%d,%d), want (%d,%d)", res.HeaderX, res.HeaderY, box.X, box.Y)
	}
	if p := res.Preset(w.Materials()); p == nil || len(p.Passes) != 1 {
		t.Error("Result.Preset did not rebuild the typed preset")
	}
}

func TestDecodeNotEmbedded(t *testing.T) {
	w := world.NewMem(8, 8)
	w.Set(2, 2, world.Cell{Material: world.MatStone})

	dec := &Decoder{World: w}
	for _, pt := range [][2]int{{0, 0}, {2, 2}} {
		res, err := dec.Decode(context.Background(), pt[0], pt[1])
		if err != nil || res != nil {
			t.Errorf("Decode(%d,%d) = (%v, %v), want (nil, nil)", pt[0], pt[1], res, err)
		}
	}
}

func TestEncodeCapacityFailsBeforeWriting(t *testing.T) {
	w := world.NewMem(32, 32)
	enc := &Encoder{World: w}

	// The wrapper alone exceeds what a 2x2 box can hold.
	err := enc.Encode(context.Background(), "too-big", []byte(testPreset), world.Rect{X: 1, Y: 1, W: 2, H: 2})
	if errors.GetCode(err) != errors.ErrCodeCapacity {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeCapacity)
	}
	if n := w.Count(); n != 0 {
		t.Errorf("capacity failure wrote %d cells, want 0", n)
	}
}

func TestEncodeOutOfBounds(t *testing.T) {
	w := world.NewMem(8, 8)
	enc := &Encoder{World: w}

	err := enc.Encode(context.Background(), "oob", []byte(testPreset), world.Rect{X: 4, Y: 4, W: 8, H: 8})
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestDecodeFromEveryCell(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 10, Y: 2, W: 9, H: 7}
	encodeTestPreset(t, w, box)

	dec := &Decoder{World: w}
	for y := box.Y; y < box.Y+box.H; y++ {
		for x := box.X; x < box.X+box.W; x++ {
			res, err := dec.Decode(context.Background(), x, y)
			if err != nil {
				t.Fatalf("Decode(%d,%d): %v", x, y, err)
			}
			if res == nil || res.HeaderX != box.X || res.HeaderY != box.Y {
				t.Fatalf("Decode(%d,%d) did not reach the header", x, y)
			}
		}
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 0, Y: 0, W: 8, H: 8}
	encodeTestPreset(t, w, box)

	// Flip one payload byte in the first body cell.
	c, _ := w.Get(box.X+1, box.Y)
	c.Data[0] ^= 0x01
	w.Set(box.X+1, box.Y, c)

	dec := &Decoder{World: w}
	_, err := dec.Decode(context.Background(), box.X, box.Y)
	if errors.GetCode(err) != errors.ErrCodeChecksum {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeChecksum)
	}
}

func TestDecodeForeignCellInBody(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 4, Y: 4, W: 8, H: 8}
	encodeTestPreset(t, w, box)

	// A sand grain settled onto a body cell.
	w.Set(box.X+3, box.Y, world.Cell{Material: world.MatSand})

	dec := &Decoder{World: w}
	_, err := dec.Decode(context.Background(), box.X, box.Y)
	if errors.GetCode(err) != errors.ErrCodeForeignCell {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeForeignCell)
	}
}

func TestDecodeForeignCellOnWalk(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 4, Y: 4, W: 8, H: 8}
	encodeTestPreset(t, w, box)

	// Cut the walk path between an interior cell and the header.
	w.Clear(box.X+1, box.Y+1)

	dec := &Decoder{World: w}
	_, err := dec.Decode(context.Background(), box.X+2, box.Y+2)
	if errors.GetCode(err) != errors.ErrCodeForeignCell {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeForeignCell)
	}
}

func TestDecodeNoHeader(t *testing.T) {
	w := world.NewMem(8, 8)
	marker := w.Materials().Marker()

	// A lone magic cell with no nav bits and no header bit.
	w.Set(3, 3, world.Cell{Material: marker, Ctype: Magic})

	dec := &Decoder{World: w}
	_, err := dec.Decode(context.Background(), 3, 3)
	if errors.GetCode(err) != errors.ErrCodeNoHeader {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeNoHeader)
	}
}

func TestDecodePrematureEnd(t *testing.T) {
	w := world.NewMem(32, 32)
	marker := w.Materials().Marker()

	// A header that promises more chunks than the grid holds.
	w.Set(0, 0, world.Cell{
		Material: marker,
		Ctype:    Magic,
		Flags:    FlagHeader,
		Data:     [4]uint16{0, 5, 4, 4},
	})

	dec := &Decoder{World: w}
	_, err := dec.Decode(context.Background(), 0, 0)
	if errors.GetCode(err) != errors.ErrCodePrematureEnd {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodePrematureEnd)
	}
}

func TestDecodeMemoization(t *testing.T) {
	w := world.NewMem(32, 32)
	box := world.Rect{X: 0, Y: 0, W: 8, H: 8}
	encodeTestPreset(t, w, box)

	dec := &Decoder{World: w, Memo: cache.NewMemoryCache()}
	ctx := context.Background()

	first, err := dec.Decode(ctx, box.X, box.Y)
	if err != nil {
		t.Fatalf("first Decode: %v", err)
	}

	// Corrupt a body cell. A memoized second decode never re-reads the
	// body, so it still returns the original payload.
	c, _ := w.Get(box.X+1, box.Y)
	c.Data[0] ^= 0xFF
	w.Set(box.X+1, box.Y, c)

	second, err := dec.Decode(ctx, box.X, box.Y)
	if err != nil {
		t.Fatalf("memoized Decode: %v", err)
	}
	if second.Name != first.Name || !bytes.Equal(second.Data, first.Data) {
		t.Error("memoized decode diverged from the original")
	}
	if !second.Outcome.OK {
		t.Error("memoized decode lost the validation outcome")
	}
}

func TestScan(t *testing.T) {
	w := world.NewMem(64, 64)
	encodeTestPreset(t, w, world.Rect{X: 2, Y: 2, W: 8, H: 8})
	encodeTestPreset(t, w, world.Rect{X: 30, Y: 40, W: 10, H: 6})

	// A third embedding, damaged after the fact.
	encodeTestPreset(t, w, world.Rect{X: 50, Y: 10, W: 8, H: 8})
	c, _ := w.Get(51, 10)
	c.Data[1] ^= 0x80
	w.Set(51, 10, c)

	results, errs := Scan(context.Background(), w)
	if len(results) != 2 {
		t.Fatalf("found %d intact embeddings, want 2", len(results))
	}
	if len(errs) != 1 {
		t.Fatalf("found %d damaged embeddings, want 1", len(errs))
	}
	if errors.GetCode(errs[0]) != errors.ErrCodeChecksum {
		t.Errorf("damage reported as %v", errors.GetCode(errs[0]))
	}
}

func TestScanEmptyWorld(t *testing.T) {
	results, errs := Scan(context.Background(), world.NewMem(16, 16))
	if len(results) != 0 || len(errs) != 0 {
		t.Errorf("empty world scan = %d results, %d errors", len(results), len(errs))
	}
}

func TestChecksumFold(t *testing.T) {
	if Checksum(nil) != checksumSeed {
		t.Errorf("Checksum(nil) = 0x%04x, want seed 0x%04x", Checksum(nil), checksumSeed)
	}
	a := Checksum([]byte("abc"))
	b := Checksum([]byte("abd"))
	if a == b {
		t.Error("single-byte change did not alter the checksum")
	}
}

func TestChunkPacking(t *testing.T) {
	full := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := unpackChunk(packChunk(full))
	if !bytes.Equal(got[:], full) {
		t.Errorf("full chunk round-trip = %v", got)
	}

	short := []byte{0xAA, 0xBB, 0xCC}
	got = unpackChunk(packChunk(short))
	want := [chunkSize]byte{0xAA, 0xBB, 0xCC}
	if got != want {
		t.Errorf("short chunk round-trip = %v, want %v", got, want)
	}

	if chunkCount(0) != 0 || chunkCount(1) != 1 || chunkCount(8) != 1 || chunkCount(9) != 2 {
		t.Error("chunkCount boundary math wrong")
	}
}
