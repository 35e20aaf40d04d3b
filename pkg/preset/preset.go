// Package preset defines the declarative terrain-generation recipe format:
// the versioned JSON document schema, the typed pass/layer model, the
// per-mode default table, and the validator that turns untrusted documents
// into generation-ready presets.
//
// # Document vs Preset
//
// [Document] is the wire shape: flat JSON with numeric mode tags and
// pointer-typed optional fields, exactly as stored on disk and inside
// embedded particle payloads. [Preset] is the validated, resolved form the
// generation engine consumes: material names resolved to IDs, defaults
// filled in, layers expressed as a tagged union.
//
// Conversion happens in one direction through [Validate]; going back to the
// wire shape for saving uses [Preset.Document].
//
// # Versioning
//
// Documents carry a (major, minor) schema version. A document with a major
// version above the engine's is always rejected. A newer minor version is a
// warning only: per-field acceptable ranges never shrink across minor
// versions, so an older engine can still run the parts it understands.
package preset

import (
	"encoding/json"

	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/world"
)

// Engine schema version. Bump the minor when widening ranges or adding
// optional fields; bump the major only for changes an older engine cannot
// safely ignore.
const (
	EngineMajor = 1
	EngineMinor = 2
)

// Mode tags a layer's generation algorithm in the wire format.
type Mode int

// Layer modes.
const (
	ModeUniform Mode = 1
	ModePadded  Mode = 2
	ModeVein    Mode = 3
	ModeReplace Mode = 4
)

// String returns the mode's wire-stable name.
func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "uniform"
	case ModePadded:
		return "padded"
	case ModeVein:
		return "vein"
	case ModeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Document is the raw JSON preset shape. Optional fields are pointers so the
// validator can distinguish "absent" from "zero".
type Document struct {
	VersionMajor *int      `json:"versionMajor"`
	VersionMinor *int      `json:"versionMinor"`
	Passes       []PassDoc `json:"passes"`
}

// PassDoc is one generate-then-settle cycle in the wire format.
type PassDoc struct {
	Bottom             *int       `json:"bottom"`
	SettleTime         *int       `json:"settleTime"`
	AddGravityToSolids *bool      `json:"addGravityToSolids,omitempty"`
	Layers             []LayerDoc `json:"layers"`
}

// LayerDoc is one generation operation in the wire format. Which fields are
// meaningful depends on Mode; the validator ignores fields foreign to the
// layer's mode.
type LayerDoc struct {
	Mode *int    `json:"mode"`
	Type *string `json:"type"`

	// Uniform / Padded
	Thickness *int `json:"thickness,omitempty"`
	Variation *int `json:"variation,omitempty"`

	// Vein
	MinY   *int `json:"minY,omitempty"`
	MaxY   *int `json:"maxY,omitempty"`
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
	Count  *int `json:"count,omitempty"`

	// Replace
	NewType       *string  `json:"newType,omitempty"`
	Percent       *float64 `json:"percent,omitempty"`
	InExisting    *bool    `json:"inExisting,omitempty"`
	InLayer       *bool    `json:"inLayer,omitempty"`
	PreserveProps *bool    `json:"preserveProps,omitempty"`
}

// ParseDocument decodes a preset document from JSON bytes.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJSONMalformed, err, "preset document")
	}
	return &doc, nil
}

// Preset is a validated generation recipe. Material references are resolved,
// defaults are applied, and every layer satisfies its mode's constraints.
// A Preset is immutable once handed to the pipeline.
type Preset struct {
	Major, Minor int
	Passes       []Pass
}

// Pass is one generate-then-settle cycle.
type Pass struct {
	// Bottom is the absolute grid row the pass's column cursors start at.
	Bottom int

	// SettleTime is how many host ticks the pass holds after materializing.
	SettleTime int

	// GravitySolids grants normally-static solids granular physics while
	// the pass settles.
	GravitySolids bool

	Layers []Layer
}

// Layer is the tagged union of the four generation operations. Dispatch with
// a type switch over [Uniform], [Padded], [Vein], and [Replace]; Mode exists
// so callers can report which variant they hold without switching.
type Layer interface {
	Mode() Mode
}

// Uniform stacks thickness±variation/2 cells of one material on top of each
// column's running cursor.
type Uniform struct {
	Material  world.MaterialID
	Thickness int
	Variation int
}

// Mode implements Layer.
func (Uniform) Mode() Mode { return ModeUniform }

// Padded first raises every column's cursor to the current maximum, then
// behaves like Uniform on the leveled surface.
type Padded struct {
	Material  world.MaterialID
	Thickness int
	Variation int
}

// Mode implements Layer.
func (Padded) Mode() Mode { return ModePadded }

// Vein stamps Count diamond-shaped blobs of material at absolute rows in
// [MinY, MaxY], each over a Width×Height bounding box. Unlike Uniform and
// Padded it ignores the column cursors entirely.
type Vein struct {
	Material world.MaterialID
	MinY     int
	MaxY     int
	Width    int
	Height   int
	Count    int
}

// Mode implements Layer.
func (Vein) Mode() Mode { return ModeVein }

// Replace retypes particles of Old into New with probability Percent/100.
// InExisting matches live grid particles (absolute coordinates); InLayer
// matches cells already buffered by earlier layers of the same pass. Both
// may be requested at once; the grid scan runs first.
type Replace struct {
	Old           world.MaterialID
	New           world.MaterialID
	Percent       float64
	InExisting    bool
	InLayer       bool
	PreserveProps bool
}

// Mode implements Layer.
func (Replace) Mode() Mode { return ModeReplace }

// Document converts a validated preset back to the wire shape, writing every
// field explicitly (no optionals omitted). Material IDs are mapped back to
// names through reg; unknown IDs render as an empty name and will fail a
// subsequent validation, which is the desired loud failure.
func (p *Preset) Document(reg world.Registry) *Document {
	doc := &Document{
		VersionMajor: intp(p.Major),
		VersionMinor: intp(p.Minor),
		Passes:       make([]PassDoc, len(p.Passes)),
	}
	for i, pass := range p.Passes {
		pd := PassDoc{
			Bottom:             intp(pass.Bottom),
			SettleTime:         intp(pass.SettleTime),
			AddGravityToSolids: boolp(pass.GravitySolids),
			Layers:             make([]LayerDoc, len(pass.Layers)),
		}
		for j, layer := range pass.Layers {
			pd.Layers[j] = layerDoc(layer, reg)
		}
		doc.Passes[i] = pd
	}
	return doc
}

func layerDoc(layer Layer, reg world.Registry) LayerDoc {
	name := func(id world.MaterialID) *string {
		n, _ := reg.Name(id)
		return &n
	}
	mode := int(layer.Mode())

	switch l := layer.(type) {
	case Uniform:
		return LayerDoc{Mode: &mode, Type: name(l.Material), Thickness: intp(l.Thickness), Variation: intp(l.Variation)}
	case Padded:
		return LayerDoc{Mode: &mode, Type: name(l.Material), Thickness: intp(l.Thickness), Variation: intp(l.Variation)}
	case Vein:
		return LayerDoc{
			Mode: &mode, Type: name(l.Material),
			MinY: intp(l.MinY), MaxY: intp(l.MaxY),
			Width: intp(l.Width), Height: intp(l.Height), Count: intp(l.Count),
		}
	case Replace:
		return LayerDoc{
			Mode: &mode, Type: name(l.Old), NewType: name(l.New),
			Percent:    &l.Percent,
			InExisting: boolp(l.InExisting), InLayer: boolp(l.InLayer),
			PreserveProps: boolp(l.PreserveProps),
		}
	default:
		return LayerDoc{Mode: &mode}
	}
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }
