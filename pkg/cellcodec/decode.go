package cellcodec

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sandfall/strata/pkg/cache"
	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/observability"
	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

// Result is a successful decode: the embedded preset's name, its verbatim
// document JSON, and the validator's verdict on it. A bad checksum or
// malformed JSON is a decode error; a preset that decodes cleanly but fails
// validation is still a Result; the outcome tells the caller what to show.
type Result struct {
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	Outcome preset.Outcome  `json:"outcome"`

	// HeaderX, HeaderY locate the header cell the embedding was read from.
	HeaderX int `json:"headerX"`
	HeaderY int `json:"headerY"`
}

// Preset re-validates the payload and returns the typed preset, or nil when
// validation fails. Memoized results do not carry the typed form, so callers
// that need it rebuild it here.
func (r *Result) Preset(reg world.Registry) *preset.Preset {
	doc, err := preset.ParseDocument(r.Data)
	if err != nil {
		return nil
	}
	p, _ := preset.Validate(doc, reg)
	return p
}

// Decoder reads embedded presets back out of a world's grid. The host runs
// Decode every tick against the cell under the cursor, so the common cases
// (no embedded data, or an unchanged header) must stay cheap: the negative
// case is one cell read, and full decodes are memoized by header identity in
// Memo.
type Decoder struct {
	World world.World

	// Memo caches successful decodes. Nil disables memoization.
	Memo cache.Cache

	// MemoTTL bounds how long a memoized decode lives. Zero means no
	// expiration; header-identity keys already invalidate on change.
	MemoTTL time.Duration
}

// memoRecord is the serialized form of a memoized Result. Only successful
// decodes are memoized, so the outcome's error (from validation, if any) is
// flattened to its code and message.
type memoRecord struct {
	Name     string           `json:"name"`
	Data     json.RawMessage  `json:"data"`
	Warnings []preset.Warning `json:"warnings,omitempty"`
	ErrCode  errors.Code      `json:"errCode,omitempty"`
	ErrMsg   string           `json:"errMsg,omitempty"`
	HeaderX  int              `json:"headerX"`
	HeaderY  int              `json:"headerY"`
}

// Decode reads the embedding reachable from (x, y).
//
// Returns (nil, nil) when the cell holds no embedded data, a negative
// result rather than an error. Otherwise it walks the navigation flags to the
// header, reads and verifies the payload, parses the wrapper and document,
// and validates the document, returning the outcome alongside the payload.
func (d *Decoder) Decode(ctx context.Context, x, y int) (*Result, error) {
	c, ok := d.World.Get(x, y)
	if !ok || c.Ctype != Magic {
		return nil, nil
	}

	hx, hy, header, err := d.walkToHeader(x, y, c)
	if err != nil {
		observability.Codec().OnDecode(ctx, false, err)
		return nil, err
	}

	key := cache.Key("decode", hx, hy, header.Data)
	if d.Memo != nil {
		if raw, hit, _ := d.Memo.Get(ctx, key); hit {
			var rec memoRecord
			if json.Unmarshal(raw, &rec) == nil {
				observability.Codec().OnDecode(ctx, true, nil)
				return rec.result(), nil
			}
		}
	}

	res, err := d.readPayload(hx, hy, header)
	if err != nil {
		observability.Codec().OnDecode(ctx, false, err)
		return nil, err
	}

	if d.Memo != nil {
		if raw, err := json.Marshal(newMemoRecord(res)); err == nil {
			_ = d.Memo.Set(ctx, key, raw, d.MemoTTL)
		}
	}
	observability.Codec().OnDecode(ctx, false, nil)
	return res, nil
}

// walkToHeader follows RIGHT/UP flags from (x, y) to the header cell.
func (d *Decoder) walkToHeader(x, y int, c world.Cell) (int, int, world.Cell, error) {
	marker := d.World.Materials().Marker()

	for steps := 0; steps <= maxHeaderWalk; steps++ {
		if c.Material != marker || c.Ctype != Magic {
			return 0, 0, world.Cell{}, errors.New(errors.ErrCodeForeignCell,
				"foreign cell at (%d,%d) while walking to header", x, y)
		}
		if c.Flags&FlagHeader != 0 {
			return x, y, c, nil
		}
		if c.Flags&(FlagRight|FlagUp) == 0 {
			// No direction and no header: corrupted frame, the walk
			// would spin in place forever.
			break
		}
		if c.Flags&FlagRight != 0 {
			x--
		}
		if c.Flags&FlagUp != 0 {
			y--
		}
		var ok bool
		if c, ok = d.World.Get(x, y); !ok {
			return 0, 0, world.Cell{}, errors.New(errors.ErrCodeForeignCell,
				"foreign cell at (%d,%d) while walking to header", x, y)
		}
	}
	return 0, 0, world.Cell{}, errors.New(errors.ErrCodeNoHeader,
		"no header within %d steps of (%d,%d)", maxHeaderWalk, x, y)
}

// readPayload reads the body cells after the header, verifies the checksum,
// and parses the wrapper and preset document.
func (d *Decoder) readPayload(hx, hy int, header world.Cell) (*Result, error) {
	sum := header.Data[0]
	chunks := int(header.Data[1])
	box := world.Rect{X: hx, Y: hy, W: int(header.Data[2]), H: int(header.Data[3])}
	if box.W <= 0 {
		return nil, errors.New(errors.ErrCodeNoHeader, "header at (%d,%d) declares zero-width box", hx, hy)
	}

	marker := d.World.Materials().Marker()
	payload := make([]byte, 0, chunks*chunkSize)

	for i := 1; i <= chunks; i++ {
		x, y := cellAt(box, i)
		c, ok := d.World.Get(x, y)
		if !ok {
			return nil, errors.New(errors.ErrCodePrematureEnd,
				"embedding ends early at (%d,%d), chunk %d of %d", x, y, i, chunks)
		}
		if c.Material != marker || c.Ctype != Magic {
			return nil, errors.New(errors.ErrCodeForeignCell,
				"foreign cell at (%d,%d) inside embedding body", x, y)
		}
		chunk := unpackChunk(c.Data)
		payload = append(payload, chunk[:]...)
	}

	payload = trimPadding(payload)
	if got := Checksum(payload); got != sum {
		return nil, errors.New(errors.ErrCodeChecksum,
			"checksum mismatch: stored 0x%04x, computed 0x%04x", sum, got)
	}

	var w wrapper
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJSONMalformed, err, "embedding wrapper")
	}

	doc, err := preset.ParseDocument([]byte(w.Data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJSONMalformed, err, "embedded preset %q", w.Name)
	}

	_, outcome := preset.Validate(doc, d.World.Materials())
	return &Result{
		Name:    w.Name,
		Data:    json.RawMessage(w.Data),
		Outcome: outcome,
		HeaderX: hx,
		HeaderY: hy,
	}, nil
}

func newMemoRecord(r *Result) memoRecord {
	rec := memoRecord{
		Name:     r.Name,
		Data:     r.Data,
		Warnings: r.Outcome.Warnings,
		HeaderX:  r.HeaderX,
		HeaderY:  r.HeaderY,
	}
	if r.Outcome.Err != nil {
		rec.ErrCode = r.Outcome.Err.Code
		rec.ErrMsg = r.Outcome.Err.Message
	}
	return rec
}

func (rec memoRecord) result() *Result {
	out := preset.Outcome{OK: rec.ErrCode == "", Warnings: rec.Warnings}
	if rec.ErrCode != "" {
		out.Err = errors.New(rec.ErrCode, "%s", rec.ErrMsg)
	}
	return &Result{
		Name:    rec.Name,
		Data:    rec.Data,
		Outcome: out,
		HeaderX: rec.HeaderX,
		HeaderY: rec.HeaderY,
	}
}
