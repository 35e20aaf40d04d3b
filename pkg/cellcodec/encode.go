package cellcodec

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/observability"
	"github.com/sandfall/strata/pkg/world"
)

// wrapper is the JSON envelope embedded around a preset document.
type wrapper struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Encoder writes preset payloads into a world's grid.
//
// Encoding overwrites every cell of the target box, so callers that want the
// operation undoable must take a grid snapshot first; the encoder itself
// never destroys state silently: it fails before writing anything if the
// payload cannot fit.
type Encoder struct {
	World world.World
}

// Encode embeds the named preset document into box. presetJSON must be the
// preset's wire-format JSON; it is stored verbatim, so a later decode
// returns it byte-for-byte.
//
// Fails with CAPACITY_EXCEEDED before touching the grid when the payload
// needs more cells than the box has, and with INVALID_INPUT when the box
// falls outside the grid.
func (e *Encoder) Encode(ctx context.Context, name string, presetJSON []byte, box world.Rect) error {
	payload, err := json.Marshal(wrapper{Name: name, Data: string(presetJSON)})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal embedding wrapper")
	}

	chunks := chunkCount(len(payload))
	need := chunks + frameOverhead
	if have := box.Area(); need > have {
		err := errors.New(errors.ErrCodeCapacity, "payload needs %d cells, box %dx%d has %d",
			need, box.W, box.H, have)
		observability.Codec().OnEncode(ctx, len(payload), need, err)
		return err
	}

	gw, gh := e.World.Size()
	if box.X < 0 || box.Y < 0 || box.X+box.W > gw || box.Y+box.H > gh || box.W <= 0 || box.H <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"box %dx%d at (%d,%d) outside %dx%d grid", box.W, box.H, box.X, box.Y, gw, gh)
	}

	marker := e.World.Materials().Marker()
	sum := Checksum(payload)

	// Fill the whole box with marker cells first. Every non-origin cell
	// points toward the origin via its RIGHT/UP bits, so a decode can start
	// anywhere inside the box.
	for y := box.Y; y < box.Y+box.H; y++ {
		for x := box.X; x < box.X+box.W; x++ {
			e.World.Set(x, y, world.Cell{
				Material: marker,
				Ctype:    Magic,
				Flags:    navFlags(x, y, box),
			})
		}
	}

	// Header at the origin.
	e.World.Set(box.X, box.Y, world.Cell{
		Material: marker,
		Ctype:    Magic,
		Flags:    FlagHeader,
		Data:     [4]uint16{sum, uint16(chunks), uint16(box.W), uint16(box.H)},
	})

	// Body chunks, row-major after the header.
	for i := 0; i < chunks; i++ {
		x, y := cellAt(box, i+1)
		e.World.Set(x, y, world.Cell{
			Material: marker,
			Ctype:    Magic,
			Flags:    navFlags(x, y, box),
			Data:     packChunk(payload[i*chunkSize : min(len(payload), (i+1)*chunkSize)]),
		})
	}

	// Footer immediately after the last chunk.
	fx, fy := cellAt(box, chunks+1)
	e.World.Set(fx, fy, world.Cell{
		Material: marker,
		Ctype:    Magic,
		Flags:    FlagFooter | navFlags(fx, fy, box),
	})

	observability.Codec().OnEncode(ctx, len(payload), need, nil)
	return nil
}

// navFlags returns the RIGHT/UP bits for a cell position inside box.
func navFlags(x, y int, box world.Rect) uint16 {
	var f uint16
	if x > box.X {
		f |= FlagRight
	}
	if y > box.Y {
		f |= FlagUp
	}
	return f
}

// cellAt returns the grid coordinates of the i-th cell of box in row-major
// order from the origin.
func cellAt(box world.Rect, i int) (int, int) {
	return box.X + i%box.W, box.Y + i/box.W
}

// trimPadding strips the zero bytes appended to fill the final chunk. The
// payload is JSON and never ends in NUL, so the trim is unambiguous.
func trimPadding(payload []byte) []byte {
	return bytes.TrimRight(payload, "\x00")
}
